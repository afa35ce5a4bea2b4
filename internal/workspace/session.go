// SPDX-License-Identifier: MPL-2.0

package workspace

import "github.com/fusion-energy/devsetup/internal/runner"

// Session is the run context shared by bootstrap and the menu actions: the
// descriptor, the environment every command inherits and the working
// directory cursor. Nothing here touches the process environment.
type Session struct {
	descriptor *Descriptor
	cursor     *Cursor
	// base is the environment before activation; PATH extensions apply to it.
	base   runner.Environ
	active bool
}

// NewSession creates an inactive Session positioned at the descriptor's base
// directory. A zero env means the host environment.
func NewSession(d *Descriptor, env runner.Environ) *Session {
	if env.IsZero() {
		env = runner.HostEnviron()
	}
	return &Session{
		descriptor: d,
		cursor:     NewCursor(d.BaseDir()),
		base:       env,
	}
}

// Descriptor returns the session's environment descriptor.
func (s *Session) Descriptor() *Descriptor { return s.descriptor }

// Cursor returns the working directory cursor.
func (s *Session) Cursor() *Cursor { return s.cursor }

// Environ returns the environment commands run with: the activated
// environment once Activate was called, the base environment before.
func (s *Session) Environ() runner.Environ {
	if s.active {
		return s.descriptor.Activate(s.base)
	}
	return s.base
}

// ExtendPath prepends dirs to the search path of every later command.
func (s *Session) ExtendPath(dirs ...string) {
	s.base = s.base.PrependPath(dirs...)
}

// Activate makes later commands run inside the environment.
func (s *Session) Activate() { s.active = true }

// Deactivate reverts to the base environment, e.g. after the environment
// directory was removed.
func (s *Session) Deactivate() { s.active = false }

// Active reports whether commands currently run inside the environment.
func (s *Session) Active() bool { return s.active }

// Ready reports whether the session is active and the environment still
// passes the activation check.
func (s *Session) Ready() bool {
	return s.active && s.descriptor.HasActivationScript()
}

// LookPath resolves name against the session's current search path.
func (s *Session) LookPath(name string) (string, error) {
	return s.Environ().LookPath(name)
}

// Command binds c to the session: the session environment unless c carries
// its own, and the cursor directory unless c names one.
func (s *Session) Command(c runner.Command) runner.Command {
	if c.Env.IsZero() {
		c.Env = s.Environ()
	}
	if c.Dir == "" {
		c.Dir = s.cursor.Dir()
	}
	return c
}
