package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/flightdeck/internal/core/services"
)

// testEnv is an in-memory config with its data dir under t.TempDir().
type testEnv struct {
	store   *memory.ConfigStore
	dataDir string
}

// useTestServices installs memory-backed services for the test.
func useTestServices(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{store: memory.NewConfigStore(), dataDir: t.TempDir()}
	require.NoError(t, env.store.Set("storage.data_dir", env.dataDir))

	oldStore, oldSettings, oldAudit := configStore, settingsService, auditService
	configStore = env.store
	settingsService = services.NewSettingsService(env.store)
	auditService = nil

	t.Cleanup(func() {
		configStore, settingsService, auditService = oldStore, oldSettings, oldAudit
	})
	return env
}

// resetFlags restores every flag to its default so one Execute does not
// leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command and returns everything it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
