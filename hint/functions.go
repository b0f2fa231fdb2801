// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

// functionDef is one FDEF..ENDF range: §3 FunctionDef. start/end are
// indices into the owning Code's Instructions (start is the first
// instruction of the body, end is the index of the ENDF, exclusive of the
// body).
type functionDef struct {
	id      int32
	program Program
	code    *Code
	start   int
	end     int
}

// functionTable maps function id to its defining range. Ids are unique
// within one execution context; redefining one is an error (§3, §4.2).
type functionTable struct {
	defs map[int32]functionDef
}

func newFunctionTable() *functionTable {
	return &functionTable{defs: make(map[int32]functionDef)}
}

func (t *functionTable) define(id int32, prog Program, code *Code, start, end int) error {
	if _, ok := t.defs[id]; ok {
		return &Error{Kind: ErrDuplicateFunctionDefinition}
	}
	t.defs[id] = functionDef{id: id, program: prog, code: code, start: start, end: end}
	return nil
}

func (t *functionTable) lookup(id int32) (functionDef, error) {
	fd, ok := t.defs[id]
	if !ok {
		return functionDef{}, &Error{Kind: ErrUndefinedFunction}
	}
	return fd, nil
}

func (t *functionTable) reset() {
	for k := range t.defs {
		delete(t.defs, k)
	}
}

// callFrame is one entry of the bytecode call stack: the code and
// instruction index to resume at once the callee returns, and the
// remaining number of LOOPCALL repetitions.
type callFrame struct {
	returnCode  *Code
	returnIndex int
	loopsLeft   int32
	calleeID    int32
}
