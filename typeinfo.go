package main

import (
	"encoding/json"

	"github.com/pontaoski/minic/codegen"
	"github.com/pontaoski/minic/reader"
	"github.com/ztrue/tracerr"
)

func getTypeInfoFromFile(f string) (t codegen.TypeInfo, err error) {
	data, err := reader.ReadTypeInfo(f, codegen.TypeInfoSymbol)
	if err != nil {
		return codegen.TypeInfo{}, tracerr.Wrap(err)
	}

	err = json.Unmarshal([]byte(data), &t)
	return t, tracerr.Wrap(err)
}
