package commands_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/commands"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
)

// runTally executes the CLI in-process against dataDir and returns stdout.
func runTally(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	if err != nil {
		t.Logf("tally %s: %v\n%s", strings.Join(args, " "), err, errOut.String())
	}
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := runTally(t, dataDir, args...)
	require.NoError(t, err, "tally %s", strings.Join(args, " "))
	return out
}

// addedID returns the short ID printed by an add command.
func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	require.NotEmpty(t, fields)
	return fields[len(fields)-1]
}

func initDir(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, dir, append([]string{"init"}, extra...)...)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, dir, "init")
	assert.Contains(t, out, "Initialized tally data directory")

	for _, d := range []string{"import", filepath.Join("import", "processed"), "ledger"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.StoreDir, cfg.Store)

	_, err = os.Stat(filepath.Join(dir, "ledger", "startingBalance.json"))
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".env")
}

func TestInit_SQLite(t *testing.T) {
	dir := initDir(t, "--store", "sqlite")
	_, err := os.Stat(filepath.Join(dir, "tally.db"))
	require.NoError(t, err)

	mustRun(t, dir, "balance", "set", "125.50")
	assert.Contains(t, mustRun(t, dir, "balance", "show"), "125.50")
}

func TestInit_Twice(t *testing.T) {
	dir := initDir(t)
	_, err := runTally(t, dir, "init")
	assert.Error(t, err)
}

func TestInit_BadStore(t *testing.T) {
	_, err := runTally(t, t.TempDir(), "init", "--store", "postgres")
	assert.Error(t, err)
}

func TestInit_Git(t *testing.T) {
	if !gitops.Available() {
		t.Skip("git not installed")
	}
	dir := initDir(t, "--git")
	assert.True(t, gitops.IsRepo(dir))

	mustRun(t, dir, "tx", "add", "--date", "2025-01-01", "--amount", "100", "-d", "Salary")

	git := exec.Command("git", "log", "--format=%s")
	git.Dir = dir
	log, err := git.Output()
	require.NoError(t, err)
	assert.Contains(t, string(log), "init: store=dir")
	assert.Contains(t, string(log), "tx.add: 2025-01-01 Salary")

	ignored, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignored), ".env")
}

func TestTx_AddListEdit(t *testing.T) {
	dir := initDir(t)

	mustRun(t, dir, "tx", "add", "--date", "2025-01-01", "--amount", "100", "-c", "Pay", "-d", "Salary")
	lunch := addedID(t, mustRun(t, dir, "tx", "add", "--date", "2025-01-02", "--amount=-30", "-c", "Food", "-d", "Lunch"))

	out := mustRun(t, dir, "tx", "list")
	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "Lunch")
	assert.Contains(t, out, "Total balance:    70.00")

	out = mustRun(t, dir, "tx", "list", "--category", "Food")
	assert.NotContains(t, out, "Salary")
	assert.Contains(t, out, "-30.00")

	mustRun(t, dir, "tx", "archive", lunch)
	_, err := runTally(t, dir, "tx", "edit", lunch, "--amount=-31")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archived")
	_, err = runTally(t, dir, "tx", "rm", lunch)
	require.Error(t, err)

	mustRun(t, dir, "tx", "unarchive", lunch)
	mustRun(t, dir, "tx", "edit", lunch, "--amount=-35")
	assert.Contains(t, mustRun(t, dir, "balance", "show"), "65.00")

	mustRun(t, dir, "tx", "rm", lunch)
	assert.NotContains(t, mustRun(t, dir, "tx", "list"), "Lunch")
}

func TestTx_ParenthesisedAmount(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "balance", "set", "$1,000")
	mustRun(t, dir, "tx", "add", "--date", "2025-01-02", "--amount", "(30.00)", "-c", "Food", "-d", "Lunch")
	assert.Contains(t, mustRun(t, dir, "balance", "show"), "Current balance:  970.00")

	_, err := runTally(t, dir, "tx", "add", "--date", "2025-01-02", "--amount", "thirty")
	assert.Error(t, err)
}

func TestTx_ExportReimport(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "balance", "set", "50")
	mustRun(t, dir, "tx", "add", "--date", "2025-01-01", "--amount", "100", "-c", "Pay", "-d", "Salary")
	mustRun(t, dir, "tx", "add", "--date", "2025-01-02", "--amount=-30", "-c", "Food", "-d", "Lunch")

	path := filepath.Join(t.TempDir(), "out.csv")
	mustRun(t, dir, "tx", "export", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2025-01-02,Food,Lunch,-30.00,120.00")

	_, err = runTally(t, dir, "tx", "clear")
	assert.Error(t, err, "clear needs --yes")
	mustRun(t, dir, "tx", "clear", "--yes")
	assert.Contains(t, mustRun(t, dir, "balance", "show"), "Starting balance: 0.00")

	out := mustRun(t, dir, "tx", "import", path)
	assert.Contains(t, out, "Imported 2 cash rows")
	show := mustRun(t, dir, "balance", "show")
	assert.Contains(t, show, "Starting balance: 50.00")
	assert.Contains(t, show, "Current balance:  120.00")
}

func TestTx_ImportPending(t *testing.T) {
	dir := initDir(t)
	for _, name := range []string{"checkbook.csv", "trades.csv"} {
		data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "import", name), data, 0o644))
	}

	out := mustRun(t, dir, "tx", "import")
	assert.Contains(t, out, "Imported 4 cash rows from checkbook.csv (4 skipped)")
	assert.Contains(t, out, "Imported 3 investments rows from trades.csv (6 skipped)")

	for _, name := range []string{"checkbook.csv", "trades.csv"} {
		_, err := os.Stat(filepath.Join(dir, "import", "processed", name))
		assert.NoError(t, err, "%s moved to processed", name)
	}

	show := mustRun(t, dir, "balance", "show")
	assert.Contains(t, show, "Starting balance: 1000.00")
	assert.Contains(t, show, "Current balance:  3376.29", "matches the file's last Balance")
	assert.Contains(t, mustRun(t, dir, "category", "list"), "Groceries")
	assert.Contains(t, mustRun(t, dir, "invest", "list"), "VTI")

	out = mustRun(t, dir, "tx", "import")
	assert.Contains(t, out, "No CSV files")
}

func TestCategory(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "category", "add", "Food")
	_, err := runTally(t, dir, "category", "add", "Food")
	assert.Error(t, err)

	mustRun(t, dir, "tx", "add", "--date", "2025-01-02", "--amount=-30", "-c", "Food", "-d", "Lunch")
	mustRun(t, dir, "category", "rename", "Food", "Dining")
	assert.Contains(t, mustRun(t, dir, "tx", "list"), "Dining")

	mustRun(t, dir, "category", "rm", "Dining")
	out := mustRun(t, dir, "category", "list")
	assert.NotContains(t, out, "Dining")
	assert.Contains(t, mustRun(t, dir, "tx", "list"), "Uncategorized")

	_, err = runTally(t, dir, "category", "rm", "Uncategorized")
	assert.Error(t, err)
}

func TestInvestAndPositions(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "invest", "add", "--account", "Brokerage", "--ticker", "abc", "--shares", "10", "--price", "100", "--date", "2025-01-02")
	sell := addedID(t, mustRun(t, dir, "invest", "add", "--account", "Brokerage", "--ticker", "ABC", "--type", "sell", "--shares", "4", "--price", "120"))
	mustRun(t, dir, "prices", "set", "abc", "150")

	out := mustRun(t, dir, "positions")
	assert.Contains(t, out, "ABC")
	assert.Contains(t, out, "86.67")
	assert.Contains(t, out, "900.00")
	assert.Contains(t, out, "380.00")
	assert.Contains(t, out, "100.0%")

	out = mustRun(t, dir, "positions", "--by-account", "--sort", "marketValue", "--desc")
	assert.Contains(t, out, "Brokerage")

	_, err := runTally(t, dir, "positions", "--sort", "color")
	assert.Error(t, err)

	_, err = runTally(t, dir, "invest", "add", "--account", "IRA", "--ticker", "X", "--shares", "0", "--price", "1")
	assert.Error(t, err)

	mustRun(t, dir, "invest", "edit", sell, "--shares", "10")
	assert.Contains(t, mustRun(t, dir, "positions"), "No open positions.")

	path := filepath.Join(t.TempDir(), "trades.csv")
	mustRun(t, dir, "invest", "export", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Brokerage,2025-01-02,BUY,ABC,10,100,1000")

	mustRun(t, dir, "invest", "clear", "--yes")
	out = mustRun(t, dir, "invest", "import", path)
	assert.Contains(t, out, "Imported 2 investments rows")
}

func TestPrices_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("symbol") {
		case "ABC":
			fmt.Fprint(w, `{"c":150.25}`)
		default:
			fmt.Fprint(w, `{"c":0}`)
		}
	}))
	defer srv.Close()

	dir := initDir(t)
	cfgPath := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Quotes.BaseURL = srv.URL
	require.NoError(t, config.Save(cfgPath, cfg))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.EnvFile), []byte("FINNHUB_API_KEY=test-key\n"), 0o600))
	t.Setenv("FINNHUB_API_KEY", "")

	mustRun(t, dir, "invest", "add", "--account", "IRA", "--ticker", "ABC", "--shares", "1", "--price", "100")
	out := mustRun(t, dir, "prices", "refresh")
	assert.Contains(t, out, "Updated 1 of 1 prices")
	assert.Contains(t, mustRun(t, dir, "prices", "list"), "150.25")

	mustRun(t, dir, "prices", "set", "XYZ", "9")
	mustRun(t, dir, "invest", "add", "--account", "IRA", "--ticker", "XYZ", "--shares", "1", "--price", "10")
	_, err = runTally(t, dir, "prices", "refresh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XYZ")

	out = mustRun(t, dir, "prices", "list")
	assert.Contains(t, out, "150.25")
	assert.Contains(t, out, "9.00", "failed ticker keeps its previous price")

	mustRun(t, dir, "prices", "rm", "xyz")
	assert.NotContains(t, mustRun(t, dir, "prices", "list"), "XYZ")
}

func TestPrices_RefreshNeedsKey(t *testing.T) {
	dir := initDir(t)
	t.Setenv("FINNHUB_API_KEY", "")
	mustRun(t, dir, "invest", "add", "--account", "IRA", "--ticker", "ABC", "--shares", "1", "--price", "100")

	_, err := runTally(t, dir, "prices", "refresh")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNoAPIKey)
}

func TestBudget(t *testing.T) {
	dir := initDir(t)
	rent := addedID(t, mustRun(t, dir, "budget", "add", "-c", "Rent", "-d", "Rent", "--amount=-1200", "--day", "31"))
	mustRun(t, dir, "budget", "add", "-c", "Pay", "-d", "Salary", "--amount", "3000", "--day", "1")

	_, err := runTally(t, dir, "budget", "add", "-c", "Pay", "-d", "Bad", "--amount", "1", "--day", "40")
	assert.Error(t, err)

	out := mustRun(t, dir, "budget", "list")
	assert.Contains(t, out, "Net per month: 1800.00")

	mustRun(t, dir, "budget", "update", rent, "--amount=-1300")
	out = mustRun(t, dir, "budget", "insert", "--month", "feb", "--year", "2025")
	assert.Contains(t, out, "Inserted 2 transactions for February 2025")

	out = mustRun(t, dir, "tx", "list")
	assert.Contains(t, out, "2025-02-01")
	assert.Contains(t, out, "2025-03-03")
	assert.Contains(t, out, "Total balance:    1700.00")

	mustRun(t, dir, "budget", "rm", rent)
	assert.NotContains(t, mustRun(t, dir, "budget", "list"), "Rent")
}

func TestLog(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "category", "add", "Travel")
	mustRun(t, dir, "balance", "set", "10")

	out := mustRun(t, dir, "log")
	assert.Contains(t, out, "init")
	assert.Contains(t, out, "category.add")
	assert.Contains(t, out, "balance.set")

	out = mustRun(t, dir, "log", "-n", "1")
	assert.NotContains(t, out, "category.add")
	assert.Contains(t, out, "balance.set")
}
