// Package reader pulls the embedded type info out of a compiled minic
// library.
package reader

import "github.com/coreos/pkg/dlopen"

import "C"

func ReadTypeInfo(from, symbol string) (string, error) {
	handle, err := dlopen.GetHandle([]string{from})
	if err != nil {
		return "", err
	}
	defer handle.Close()

	sym, err := handle.GetSymbolPointer(symbol)
	if err != nil {
		return "", err
	}

	str := C.GoString((*C.char)(sym))
	return str, nil
}
