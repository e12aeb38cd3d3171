package syntax

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

typedef const void *(*language_func)(void);

static const void *call_language(void *fn) {
	return ((language_func)fn)();
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	sitter "github.com/smacker/go-tree-sitter"
)

// LoadLibrary opens a compiled grammar (for example blade.so built from
// tree-sitter-blade) and returns the language its symbol exports. The handle
// is never closed; grammars live for the whole process.
func LoadLibrary(path, symbol string) (*sitter.Language, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, fmt.Errorf("load grammar %s: %s", path, C.GoString(C.dlerror()))
	}

	csymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(csymbol))

	fn := C.dlsym(handle, csymbol)
	if fn == nil {
		return nil, fmt.Errorf("load grammar %s: symbol %s: %s", path, symbol, C.GoString(C.dlerror()))
	}

	ptr := C.call_language(fn)
	if ptr == nil {
		return nil, fmt.Errorf("load grammar %s: %s returned no language", path, symbol)
	}
	return sitter.NewLanguage(unsafe.Pointer(ptr)), nil
}
