/*
 * Lua scripted multiplex handlers
 *
 * A script stands in for a TSR that hooks INT 2Fh.  It must define a
 * global function multiplex(regs), where regs is a table of the lower
 * case register names.  Returning true claims the call and the values
 * left in regs are returned to the guest.
 *
 *   function multiplex(regs)
 *     if regs.ax == 0xd200 then
 *       regs.ax = 0xd2ff
 *       return true
 *     end
 *     return false
 *   end
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

type ScriptHandler struct {
	name string
	L    *lua.LState
	fn   lua.LValue
	log  *zap.Logger
}

// LoadScript loads a ScriptHandler from a Lua file
func LoadScript(path string, log *zap.Logger) (*ScriptHandler, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "script")
	}
	return NewScriptHandler(filepath.Base(path), string(src), log)
}

func NewScriptHandler(name string, src string, log *zap.Logger) (*ScriptHandler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	L := lua.NewState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, errors.Wrapf(err, "script: %s", name)
	}
	fn := L.GetGlobal("multiplex")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, errors.Errorf("script: %s: no multiplex function", name)
	}
	return &ScriptHandler{name: name, L: L, fn: fn,
		log: log.Named("script").With(zap.String("script", name))}, nil
}

func (s *ScriptHandler) Name() string {
	return s.name
}

// Returns pointers to the registers in the order they are named
// in scriptRegNames
func scriptRegs(r *Registers) []*uint16 {
	return []*uint16{
		&r.AX, &r.BX, &r.CX, &r.DX, &r.SI, &r.DI, &r.BP, &r.SP,
		&r.CS, &r.DS, &r.ES, &r.SS, &r.Flags,
	}
}

var scriptRegNames = []string{
	"ax", "bx", "cx", "dx", "si", "di", "bp", "sp",
	"cs", "ds", "es", "ss", "flags",
}

func (s *ScriptHandler) Multiplex(regs *Registers) bool {
	tbl := s.L.NewTable()
	for i, p := range scriptRegs(regs) {
		tbl.RawSetString(scriptRegNames[i], lua.LNumber(*p))
	}

	err := s.L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, tbl)
	if err != nil {
		s.log.Error("multiplex failed", zap.String("ax", hex16(regs.AX)), zap.Error(err))
		return false
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	if !lua.LVAsBool(ret) {
		return false
	}

	for i, p := range scriptRegs(regs) {
		if n, ok := tbl.RawGetString(scriptRegNames[i]).(lua.LNumber); ok {
			*p = uint16(int64(n))
		}
	}
	return true
}

func (s *ScriptHandler) Close() {
	s.L.Close()
}
