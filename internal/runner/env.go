package runner

import (
	"crypto/rand"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
)

// Context describes the run directory and action a child process serves.
type Context struct {
	BatchID   string
	Workspace string
	RunDir    string
	Action    string
}

// NewBatchID generates a ULID identifying one invocation of the tool.
func NewBatchID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// BuildEnv constructs the environment variable slice for a child process.
// It starts with the current process environment, overlays base, and adds
// SIMSTATS_* variables describing rctx.
func BuildEnv(base map[string]string, rctx Context) []string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		for i := 0; i < len(e); i++ {
			if e[i] == '=' {
				envMap[e[:i]] = e[i+1:]
				break
			}
		}
	}

	for k, v := range base {
		envMap[k] = v
	}

	setIf := func(k, v string) {
		if v != "" {
			envMap[k] = v
		}
	}
	setIf("SIMSTATS_BATCH_ID", rctx.BatchID)
	setIf("SIMSTATS_WORKSPACE", rctx.Workspace)
	setIf("SIMSTATS_RUN_DIR", rctx.RunDir)
	setIf("SIMSTATS_ACTION", rctx.Action)

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}
