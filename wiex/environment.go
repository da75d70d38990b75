package wiex

import (
	"os"
	"strings"
)

const PathEnvName = "PATH"
const ExtraPathEnvName = "WIEX_PATH"

// Environment is a per-invocation snapshot of the host environment. The
// child environment is always derived from this snapshot, never from live
// process state, so repeated invocations can't compound path entries.
type Environment struct {
	ExtraPath     string
	ExtraPathSet  bool
	InheritedPath string
	Environ       []string
}

func CurrentEnvironment() Environment {
	extra, ok := os.LookupEnv(ExtraPathEnvName)

	return Environment{
		ExtraPath:     extra,
		ExtraPathSet:  ok,
		InheritedPath: os.Getenv(PathEnvName),
		Environ:       os.Environ(),
	}
}

// ChildEnv returns the snapshot with PATH replaced by the inherited value
// joined with the extra path. The join is unconditional: an empty extra
// path still goes through it. No deduplication is attempted.
func (e Environment) ChildEnv() []string {
	path := PathEnvName + "=" + e.InheritedPath + string(os.PathListSeparator) + e.ExtraPath

	env := make([]string, len(e.Environ))
	replaced := false

	for i, entry := range e.Environ {
		// windows spells the variable "Path"
		if name, _, ok := strings.Cut(entry, "="); ok && strings.EqualFold(name, PathEnvName) {
			env[i] = path
			replaced = true
		} else {
			env[i] = entry
		}
	}

	if !replaced {
		env = append(env, path)
	}

	return env
}
