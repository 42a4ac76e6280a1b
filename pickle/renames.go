// Copyright 2023 The NLP Odyssey Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pickle

// moduleRenames maps a Python 2 module name to its Python 3 successor,
// for GLOBAL/STACK_GLOBAL/INST references emitted by protocol < 3
// picklers. Entries mirror CPython's pickle.py _compat_pickle.
// IMPORT_MAPPING table; this is a representative subset covering the
// renames this module's test fixtures and common .pt archives exercise,
// not an exhaustive reproduction.
var moduleRenames = map[string]string{
	"__builtin__":       "builtins",
	"copy_reg":          "copyreg",
	"Queue":             "queue",
	"SocketServer":      "socketserver",
	"ConfigParser":      "configparser",
	"repr":              "reprlib",
	"FileDialog":        "tkinter.filedialog",
	"tkFileDialog":      "tkinter.filedialog",
	"SimpleDialog":      "tkinter.simpledialog",
	"tkSimpleDialog":    "tkinter.simpledialog",
	"tkColorChooser":    "tkinter.colorchooser",
	"tkCommonDialog":    "tkinter.commondialog",
	"Tkinter":           "tkinter",
	"Tix":               "tkinter.tix",
	"ttk":               "tkinter.ttk",
	"Dialog":            "tkinter.dialog",
	"ScrolledText":      "tkinter.scrolledtext",
	"Tkdnd":             "tkinter.dnd",
	"tkFont":            "tkinter.font",
	"tkMessageBox":      "tkinter.messagebox",
	"markupbase":        "_markupbase",
	"_winreg":           "winreg",
	"thread":            "_thread",
	"dummy_thread":      "_dummy_thread",
	"dbhash":            "dbm.bsd",
	"dumbdbm":           "dbm.dumb",
	"dbm":               "dbm.ndbm",
	"gdbm":              "dbm.gnu",
	"xmlrpclib":         "xmlrpc.client",
	"DocXMLRPCServer":   "xmlrpc.server",
	"SimpleXMLRPCServer": "xmlrpc.server",
	"httplib":           "http.client",
	"htmlentitydefs":    "html.entities",
	"HTMLParser":        "html.parser",
	"Cookie":            "http.cookies",
	"cookielib":         "http.cookiejar",
	"BaseHTTPServer":    "http.server",
	"SimpleHTTPServer":  "http.server",
	"CGIHTTPServer":     "http.server",
	"commands":          "subprocess",
	"urlparse":          "urllib.parse",
	"robotparser":       "urllib.robotparser",
	"urllib2":           "urllib.request",
	"StringIO":          "io",
	"cStringIO":         "io",
	"cPickle":           "pickle",
}

type globalKey struct{ module, name string }

type globalTarget struct{ module, name string }

// nameRenames maps a specific (module, name) pair to its Python 3
// replacement, for cases a bare module rename does not cover: classes
// that moved to a different module than the rest of their origin
// module, and builtin functions/types renamed outright. Mirrors
// CPython's NAME_MAPPING table (representative subset).
var nameRenames = map[globalKey]globalTarget{
	{"__builtin__", "xrange"}:     {"builtins", "range"},
	{"__builtin__", "reduce"}:     {"functools", "reduce"},
	{"__builtin__", "intern"}:     {"sys", "intern"},
	{"__builtin__", "unichr"}:     {"builtins", "chr"},
	{"__builtin__", "unicode"}:    {"builtins", "str"},
	{"__builtin__", "long"}:       {"builtins", "int"},
	{"__builtin__", "basestring"}: {"builtins", "str"},
	{"exceptions", "StandardError"}: {"builtins", "Exception"},
	{"exceptions", "Exception"}:     {"builtins", "Exception"},
	{"exceptions", "ValueError"}:    {"builtins", "ValueError"},
	{"exceptions", "TypeError"}:     {"builtins", "TypeError"},
	{"exceptions", "KeyError"}:      {"builtins", "KeyError"},
	{"exceptions", "IndexError"}:    {"builtins", "IndexError"},
	{"exceptions", "AttributeError"}: {"builtins", "AttributeError"},
	{"exceptions", "RuntimeError"}:  {"builtins", "RuntimeError"},
	{"exceptions", "OSError"}:       {"builtins", "OSError"},
	{"exceptions", "IOError"}:       {"builtins", "OSError"},
	{"UserDict", "IterableUserDict"}: {"collections", "UserDict"},
	{"UserDict", "UserDict"}:         {"collections", "UserDict"},
	{"UserList", "UserList"}:         {"collections", "UserList"},
	{"UserString", "UserString"}:     {"collections", "UserString"},
	{"whichdb", "whichdb"}:           {"dbm", "whichdb"},
	{"StringIO", "StringIO"}:         {"io", "StringIO"},
	{"cStringIO", "StringIO"}:        {"io", "StringIO"},
	{"os", "getcwdu"}:                {"os", "getcwd"},
	{"itertools", "izip"}:            {"builtins", "zip"},
	{"itertools", "imap"}:            {"builtins", "map"},
	{"itertools", "ifilter"}:         {"builtins", "filter"},
	{"copy_reg", "_reconstructor"}:   {"copyreg", "_reconstructor"},
}

// rewriteGlobal applies the Python 2→3 compatibility renaming to a
// (module, name) pair, for use when the stream's protocol is below 3.
// Specific (module, name) overrides take priority over a bare module
// rename, matching CPython's own lookup order.
func rewriteGlobal(module, name string) (string, string) {
	if target, ok := nameRenames[globalKey{module, name}]; ok {
		return target.module, target.name
	}
	if renamed, ok := moduleRenames[module]; ok {
		return renamed, name
	}
	return module, name
}
