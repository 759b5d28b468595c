package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/whimsicalfrog/frogshop/internal/core/cart"
	"github.com/whimsicalfrog/frogshop/internal/core/config"
	"github.com/whimsicalfrog/frogshop/internal/core/notify"
	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
	"github.com/whimsicalfrog/frogshop/internal/metrics"
	"github.com/whimsicalfrog/frogshop/internal/shop"
)

var catalog = map[string]map[string]any{
	"TUM1": {"sku": "TUM1", "name": "Frog Tumbler", "price": "20.00", "category": "Drinkware"},
	"LID1": {"sku": "LID1", "name": "Tumbler Lid", "price": 5, "category": "Accessories"},
	"STR1": {"sku": "STR1", "name": "Straw Pack", "price": 4, "category": "Accessories"},
}

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []any{catalog["TUM1"], catalog["LID1"], catalog["STR1"]})
	})
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		p, ok := catalog[r.URL.Query().Get("sku")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "product not found"})
			return
		}
		writeEnvelope(w, http.StatusOK, p)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

type testEnv struct {
	app    *shop.App
	flags  *Flags
	out    bytes.Buffer
	errOut bytes.Buffer
	stdin  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := catalogServer(t)
	dir := t.TempDir()

	database, err := shop.OpenDB(dir, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	cfg.APIURL = srv.URL

	return &testEnv{
		app: shop.NewApp(&cfg, database, metrics.NewManager(), zerolog.Nop()),
		flags: &Flags{
			ConfigPath: filepath.Join(dir, "config.yaml"),
			DataDir:    dir,
			Config:     &cfg,
		},
	}
}

func (e *testEnv) run(args ...string) error {
	e.out.Reset()
	e.errOut.Reset()

	root := &cli.Command{
		Name:           "frogshop",
		Reader:         strings.NewReader(e.stdin),
		Writer:         &e.out,
		ErrWriter:      &e.errOut,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	root = NewUpsellCmd(e.flags, e.app).Register(root)
	root = NewClickCmd(e.flags, e.app).Register(root)
	root = NewNotificationsCmd(e.flags, e.app).Register(root)
	root = NewConfigCmd(e.flags, e.app).Register(root)

	return root.Run(context.Background(), append([]string{"frogshop"}, args...))
}

func decodeLines[T any](t *testing.T, s string) []T {
	t.Helper()
	var out []T
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line == "" {
			continue
		}
		var v T
		require.NoError(t, json.Unmarshal([]byte(line), &v))
		out = append(out, v)
	}
	return out
}

func TestUpsell_json_lines_for_skus(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run("upsell", "--sku", "TUM1"))

	recs := decodeLines[upsell.Recommendation](t, e.out.String())
	require.Len(t, recs, 2)
	assert.Equal(t, "LID1", recs[0].SKU)
	assert.Equal(t, 5, recs[0].Score)
	assert.Equal(t, "STR1", recs[1].SKU)
}

func TestUpsell_exclude(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run("upsell", "--sku", "TUM1", "--exclude", "LID1"))

	recs := decodeLines[upsell.Recommendation](t, e.out.String())
	require.Len(t, recs, 1)
	assert.Equal(t, "STR1", recs[0].SKU)
}

func TestUpsell_table(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run("upsell", "--sku", "TUM1", "--format", "table"))

	lines := strings.Split(strings.TrimSpace(e.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"SKU", "NAME", "PRICE", "SCORE"}, strings.Fields(lines[0]))
	assert.Contains(t, lines[1], "Tumbler Lid")
	assert.Contains(t, lines[1], "$5.00")
}

func TestUpsell_markdown(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run("upsell", "--sku", "TUM1", "--format", "markdown"))

	out := e.out.String()
	assert.NotContains(t, out, "\x1b[", "piped output carries no escapes")
	assert.Contains(t, out, "Straw Pack")
	assert.Contains(t, out, "Tumbler Lid")
}

func TestUpsell_cart_file(t *testing.T) {
	e := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "cart.json")
	data, err := json.Marshal([]upsell.CartItem{{SKU: "TUM1", Name: "Frog Tumbler", Price: 20, Category: "Drinkware"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	require.NoError(t, e.run("upsell", "-f", path))

	assert.Len(t, decodeLines[upsell.Recommendation](t, e.out.String()), 2)
}

func TestUpsell_cart_stdin(t *testing.T) {
	e := newTestEnv(t)
	e.stdin = `[{"sku":"TUM1","name":"Frog Tumbler","price":20,"category":"Drinkware"}]`

	require.NoError(t, e.run("upsell", "-f", "-"))

	recs := decodeLines[upsell.Recommendation](t, e.out.String())
	require.Len(t, recs, 2)
	assert.Equal(t, "LID1", recs[0].SKU)
}

func TestUpsell_saved_cart(t *testing.T) {
	e := newTestEnv(t)
	item := upsell.CartItem{SKU: "TUM1", Name: "Frog Tumbler", Price: 20, Category: "Drinkware"}
	require.NoError(t, e.app.Carts.Save(context.Background(), cart.New(item)))

	require.NoError(t, e.run("upsell"))

	assert.Len(t, decodeLines[upsell.Recommendation](t, e.out.String()), 2)
}

func TestUpsell_empty_cart(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run("upsell"))

	assert.Empty(t, e.out.String())
	assert.Contains(t, e.errOut.String(), "Cart is empty")
}

func TestUpsell_errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", []string{"upsell", "--sku", "TUM1", "--format", "xml"}, `unknown format "xml"`},
		{"unknown sku", []string{"upsell", "--sku", "NOPE"}, "resolve cart"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			err := e.run(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClick_records_affinity(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run("click", "STR1", "STR1"))

	assert.Equal(t, 2, strings.Count(e.errOut.String(), "We'll suggest more like STR1"))

	require.NoError(t, e.run("upsell", "--sku", "TUM1"))
	recs := decodeLines[upsell.Recommendation](t, e.out.String())
	require.NotEmpty(t, recs)
	assert.Equal(t, "STR1", recs[0].SKU, "clicked product ranks first")
	assert.Equal(t, 6, recs[0].Score)
}

func TestClick_requires_sku(t *testing.T) {
	e := newTestEnv(t)

	err := e.run("click")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one SKU")
}

func TestNotifications_ls_and_clear(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.app.Toasts.Show("Frog Tumbler", notify.KindSuccess, notify.Options{Title: "Added to cart"})
	require.NoError(t, err)
	_, err = e.app.Toasts.Show("Could not save your cart", notify.KindError, notify.Options{})
	require.NoError(t, err)

	require.NoError(t, e.run("notifications", "ls", "--json"))
	infos := decodeLines[notificationInfo](t, e.out.String())
	require.Len(t, infos, 2)
	assert.Equal(t, "Could not save your cart", infos[0].Message, "newest first")
	assert.Equal(t, "Added to cart", infos[1].Title)

	require.NoError(t, e.run("notifications", "ls", "--limit", "1"))
	lines := strings.Split(strings.TrimSpace(e.out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Could not save your cart")

	require.NoError(t, e.run("notifications", "clear", "--yes"))
	assert.Contains(t, e.errOut.String(), "Removed 2 notification(s)")

	require.NoError(t, e.run("notifications", "ls"))
	assert.Empty(t, e.out.String())
	assert.Contains(t, e.errOut.String(), "No notifications yet")
}

func TestNotifications_clear_needs_terminal_or_yes(t *testing.T) {
	e := newTestEnv(t)

	err := e.run("notifications", "clear")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestConfig_show(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run("config", "show"))

	out := e.out.String()
	assert.Contains(t, out, "api_url: "+e.flags.Config.APIURL)
	assert.Contains(t, out, "cache_ttl: 1m0s")
	assert.NotContains(t, out, "data_dir")
}

func TestConfig_validate(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run("config", "validate"))
	assert.Contains(t, e.errOut.String(), "Configuration is valid")

	e.flags.Config.Theme = "neon"

	require.Error(t, e.run("config", "validate"))
	assert.Contains(t, e.errOut.String(), "theme:")
	assert.Contains(t, e.errOut.String(), "1 error(s) found")

	require.Error(t, e.run("config", "validate", "--format", "json"))
	var result struct {
		Valid  bool              `json:"valid"`
		Errors []validationIssue `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "theme", result.Errors[0].Field)
}

func TestValidationIssues_plain_error(t *testing.T) {
	issues := validationIssues(assert.AnError)
	assert.Equal(t, []validationIssue{{Message: assert.AnError.Error()}}, issues)
	assert.Nil(t, validationIssues(nil))
}
