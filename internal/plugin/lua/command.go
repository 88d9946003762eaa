package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keycmd/internal/command"
)

// Command is a command implemented by a Lua function. The function
// receives a context table with name, param, count and source fields.
type Command struct {
	state   *State
	fn      *lua.LFunction
	enabled *lua.LFunction
}

// Invoke implements command.Command. A Lua error is returned as a Go
// error.
func (c *Command) Invoke(ctx *command.Context) error {
	arg, err := c.contextTable(ctx)
	if err != nil {
		return err
	}
	if _, err := c.state.CallFunction(c.fn, arg); err != nil {
		return fmt.Errorf("%s: %w", ctx.Name, err)
	}
	return nil
}

// IsEnabled implements command.Command. Without a predicate the command
// is always enabled; a failing predicate disables it.
func (c *Command) IsEnabled(ctx *command.Context) bool {
	if c.enabled == nil {
		return true
	}
	arg, err := c.contextTable(ctx)
	if err != nil {
		return false
	}
	ret, err := c.state.CallFunction(c.enabled, arg)
	if err != nil {
		return false
	}
	return lua.LVAsBool(ret)
}

func (c *Command) contextTable(ctx *command.Context) (*lua.LTable, error) {
	var tbl *lua.LTable
	err := c.state.With(func(L *lua.LState) {
		tbl = L.NewTable()
		tbl.RawSetString("name", lua.LString(ctx.Name))
		if ctx.Param != "" {
			tbl.RawSetString("param", lua.LString(ctx.Param))
		}
		tbl.RawSetString("count", lua.LNumber(ctx.Count))
		tbl.RawSetString("source", lua.LString(ctx.Source.String()))
	})
	return tbl, err
}
