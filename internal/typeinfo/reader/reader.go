// Package reader reads a null-terminated string global out of a
// built shared object via dlopen, grounded on tawago's reader/reader.go.
package reader

import "C"

import "github.com/coreos/pkg/dlopen"

func ReadSymbol(from, symbol string) (string, error) {
	handle, err := dlopen.GetHandle([]string{from})
	if err != nil {
		return "", err
	}
	defer handle.Close()

	sym, err := handle.GetSymbolPointer(symbol)
	if err != nil {
		return "", err
	}

	return C.GoString((*C.char)(sym)), nil
}
