package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/save"
	"github.com/matzehuels/nodecanvas/pkg/scene"
	"github.com/matzehuels/nodecanvas/pkg/workspace"
)

// isolate points config and data lookups at temporary directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, k := range []string{"STORE", "STORE_DIR", "NAMESPACE", "LRU_SIZE", "WIDTH", "HEIGHT"} {
		t.Setenv("NODECANVAS_"+k, "")
	}
}

// runCLI executes one command line and returns its combined stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

// showRows runs "show --json" on path.
func showRows(t *testing.T, path string) []nodeRow {
	t.Helper()
	var rows []nodeRow
	if err := json.Unmarshal([]byte(mustRun(t, "show", path, "--json")), &rows); err != nil {
		t.Fatalf("decode show output: %v", err)
	}
	return rows
}

func ids(rows []nodeRow) []scene.NodeID {
	out := make([]scene.NodeID, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []scene.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newSceneFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.json")
	mustRun(t, "new", path)
	return path
}

// =============================================================================
// Scene File Commands
// =============================================================================

func TestNewAddShow(t *testing.T) {
	isolate(t)
	path := newSceneFile(t)

	mustRun(t, "add", path, "--id", "osc", "--x", "0", "--y", "0")
	mustRun(t, "add", path, "--id", "mix", "--x", "200", "--y", "40", "--input", "osc:sel", "--input", "-")

	rows := showRows(t, path)
	if want := []scene.NodeID{"osc", "mix"}; !equalIDs(ids(rows), want) {
		t.Fatalf("order = %v, want %v", ids(rows), want)
	}
	mix := rows[1]
	if mix.X != 200 || mix.Y != 40 || mix.Z != 1 {
		t.Errorf("mix row = %+v", mix)
	}
	// The file keeps the input count; sources reload unconnected.
	if mix.Inputs != 2 || mix.Connected != 0 {
		t.Errorf("mix inputs = %d connected = %d, want 2 and 0", mix.Inputs, mix.Connected)
	}

	table := mustRun(t, "show", path)
	for _, want := range []string{"osc", "mix", "2 nodes", "0 wires"} {
		if !strings.Contains(table, want) {
			t.Errorf("show output missing %q:\n%s", want, table)
		}
	}
}

func TestStatusLinesGoToStderr(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "board.json")

	run := func(args ...string) (stdout, stderr string) {
		t.Helper()
		root := New(io.Discard, LogInfo).RootCommand()
		var out, errOut bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&errOut)
		root.SetArgs(args)
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%s: %v", strings.Join(args, " "), err)
		}
		return out.String(), errOut.String()
	}

	stdout, stderr := run("new", path)
	if stdout != "" || !strings.Contains(stderr, "Created empty scene") {
		t.Errorf("new: stdout = %q, stderr = %q", stdout, stderr)
	}

	stdout, stderr = run("add", path, "--id", "osc", "--label", "Oscillator")
	if stdout != "" {
		t.Errorf("add wrote to stdout: %q", stdout)
	}
	for _, want := range []string{"Added node", "osc", "label"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("add stderr %q missing %q", stderr, want)
		}
	}

	stdout, _ = run("render", path, "-o", "-")
	if !strings.HasPrefix(stdout, "<svg") {
		t.Errorf("render to stdout should be the bare SVG, got %q", stdout)
	}
}

func TestNewRefusesOverwrite(t *testing.T) {
	isolate(t)
	path := newSceneFile(t)
	mustRun(t, "add", path, "--id", "a")

	if _, err := runCLI(t, "new", path); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("new on existing file error = %v, want INVALID_INPUT", err)
	}
	mustRun(t, "new", path, "--force")
	if rows := showRows(t, path); len(rows) != 0 {
		t.Errorf("--force should truncate the scene, got %v", ids(rows))
	}
}

func TestAddUpsertKeepsSlot(t *testing.T) {
	isolate(t)
	path := newSceneFile(t)
	mustRun(t, "add", path, "--id", "a", "--x", "1", "--y", "1")
	mustRun(t, "add", path, "--id", "b")
	mustRun(t, "add", path, "--id", "a", "--x", "9", "--y", "9")

	rows := showRows(t, path)
	if want := []scene.NodeID{"a", "b"}; !equalIDs(ids(rows), want) {
		t.Fatalf("order = %v, want %v", ids(rows), want)
	}
	if rows[0].X != 9 || rows[0].Y != 9 {
		t.Errorf("a position = (%g, %g), want (9, 9)", rows[0].X, rows[0].Y)
	}
}

func TestAddGeneratesID(t *testing.T) {
	isolate(t)
	path := newSceneFile(t)
	mustRun(t, "add", path)

	rows := showRows(t, path)
	if len(rows) != 1 || len(rows[0].ID) != 36 {
		t.Fatalf("rows = %+v, want one node with a UUID id", rows)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	isolate(t)
	path := newSceneFile(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad port flag", []string{"--input", "a:locked"}, errors.ErrCodeInvalidInput},
		{"bad id", []string{"--id", "bad\x01id"}, errors.ErrCodeInvalidNodeID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, append([]string{"add", path}, tt.args...)...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
	if rows := showRows(t, path); len(rows) != 0 {
		t.Errorf("failed adds should not write, got %v", ids(rows))
	}
}

func TestRemoveRaiseMove(t *testing.T) {
	isolate(t)
	path := newSceneFile(t)
	for _, id := range []string{"a", "b", "c"} {
		mustRun(t, "add", path, "--id", id)
	}

	mustRun(t, "raise", path, "a")
	mustRun(t, "rm", path, "b")
	mustRun(t, "move", path, "c", "--", "5", "-6")

	rows := showRows(t, path)
	if want := []scene.NodeID{"c", "a"}; !equalIDs(ids(rows), want) {
		t.Fatalf("order = %v, want %v", ids(rows), want)
	}
	if rows[0].X != 5 || rows[0].Y != -6 {
		t.Errorf("c position = (%g, %g), want (5, -6)", rows[0].X, rows[0].Y)
	}

	for _, args := range [][]string{
		{"rm", path, "missing"},
		{"raise", path, "missing"},
		{"move", path, "missing", "1", "1"},
	} {
		if _, err := runCLI(t, args...); !errors.Is(err, errors.ErrCodeNodeNotFound) {
			t.Errorf("%s: error = %v, want NODE_NOT_FOUND", args[0], err)
		}
	}
	if _, err := runCLI(t, "move", path, "c", "x", "1"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("move with bad x: error = %v, want INVALID_INPUT", err)
	}
}

func TestMissingSceneFile(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "show", filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestCamera(t *testing.T) {
	isolate(t)
	path := newSceneFile(t)

	camera := func() geom.Mat23 {
		t.Helper()
		c, err := save.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		return c.Camera
	}

	mustRun(t, "camera", path, "--pan", "10,20")
	if got, want := camera(), (geom.Mat23{1, 0, 0, 1, 10, 20}); got != want {
		t.Errorf("after pan camera = %v, want %v", got, want)
	}

	mustRun(t, "camera", path, "--reset", "--zoom", "2", "--width", "100", "--height", "100")
	if got, want := camera(), (geom.Mat23{2, 0, 0, 2, -50, -50}); got != want {
		t.Errorf("after zoom camera = %v, want %v", got, want)
	}

	mustRun(t, "camera", path, "--reset")
	if got := camera(); got != geom.Identity {
		t.Errorf("after reset camera = %v, want identity", got)
	}

	if _, err := runCLI(t, "camera", path, "--pan", "1"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("--pan with one value: error = %v, want INVALID_INPUT", err)
	}
}

// =============================================================================
// Render
// =============================================================================

func TestRender(t *testing.T) {
	isolate(t)
	path := newSceneFile(t)
	mustRun(t, "add", path, "--id", "a")
	mustRun(t, "add", path, "--id", "b", "--x", "200", "--input", "a:sel")

	out := filepath.Join(filepath.Dir(path), "scene.svg")
	mustRun(t, "render", path, "-o", out, "--highlight", "a")
	svg, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(svg, []byte("<svg")) || !bytes.Contains(svg, []byte(`id="node-a"`)) {
		t.Errorf("unexpected SVG:\n%s", svg)
	}

	mustRun(t, "render", path)
	if _, err := os.Stat(strings.TrimSuffix(path, ".json") + ".svg"); err != nil {
		t.Errorf("default output path: %v", err)
	}

	if bg := mustRun(t, "render", path, "--background", "white", "-o", "-"); !strings.Contains(bg, `fill="white"`) {
		t.Errorf("background not painted:\n%s", bg)
	}

	dot := mustRun(t, "render", path, "-t", "wiring", "-f", "dot", "-o", "-")
	if !strings.Contains(dot, "digraph") || !strings.Contains(dot, `"b"`) {
		t.Errorf("unexpected DOT:\n%s", dot)
	}

	for _, args := range [][]string{
		{"render", path, "-f", "gif", "-o", "-"},
		{"render", path, "-t", "tower", "-o", "-"},
	} {
		if _, err := runCLI(t, args...); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%v: error = %v, want INVALID_INPUT", args[2:], err)
		}
	}
}

// =============================================================================
// Store
// =============================================================================

func TestStorePushPullListRemove(t *testing.T) {
	isolate(t)
	path := newSceneFile(t)
	mustRun(t, "add", path, "--id", "a", "--x", "3", "--y", "4")

	mustRun(t, "store", "push", path)
	mustRun(t, "store", "push", path, "copy")
	if got := mustRun(t, "store", "ls"); got != "board\ncopy\n" {
		t.Errorf("ls = %q, want board and copy", got)
	}

	pulled := filepath.Join(t.TempDir(), "pulled.json")
	mustRun(t, "store", "pull", "copy", pulled)
	rows := showRows(t, pulled)
	if len(rows) != 1 || rows[0].ID != "a" || rows[0].X != 3 {
		t.Errorf("pulled rows = %+v", rows)
	}

	mustRun(t, "store", "rm", "copy")
	if got := mustRun(t, "store", "ls"); got != "board\n" {
		t.Errorf("ls after rm = %q", got)
	}

	if _, err := runCLI(t, "store", "pull", "copy", pulled); !errors.Is(err, errors.ErrCodeSceneNotFound) {
		t.Errorf("pull of removed scene: error = %v, want SCENE_NOT_FOUND", err)
	}
	if _, err := runCLI(t, "store", "rm", "../x"); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("rm with bad name: error = %v, want INVALID_NAME", err)
	}
}

func TestStoreBadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("NODECANVAS_STORE", "carrier-pigeon")
	if _, err := runCLI(t, "store", "ls"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("error = %v, want INVALID_CONFIG", err)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func TestParseInput(t *testing.T) {
	tests := []struct {
		arg     string
		want    scene.InputData
		wantErr bool
	}{
		{"osc", scene.InputData{Source: "osc"}, false},
		{"osc:sel", scene.InputData{Source: "osc", Selectable: true}, false},
		{"-", scene.InputData{}, false},
		{"", scene.InputData{}, false},
		{":sel", scene.InputData{Selectable: true}, false},
		{"-:sel", scene.InputData{Selectable: true}, false},
		{"osc:pinned", scene.InputData{}, true},
		{"a\x01b", scene.InputData{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseInput(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseInput(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseInput(%q) = %+v, want %+v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestDroppedOnSave(t *testing.T) {
	tests := []struct {
		name string
		data scene.NodeData
		want int
	}{
		{"plain", scene.NodeData{}, 0},
		{"selectable unconnected", scene.NodeData{Inputs: []scene.InputData{{Selectable: true}}}, 0},
		{"label", scene.NodeData{Label: "Mixer"}, 1},
		{"source", scene.NodeData{Inputs: []scene.InputData{{Source: "a", Selectable: true}}}, 1},
		{"not selectable", scene.NodeData{Inputs: []scene.InputData{{}}}, 1},
		{"all three", scene.NodeData{Label: "x", Inputs: []scene.InputData{{Source: "a"}}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := droppedOnSave(tt.data); len(got) != tt.want {
				t.Errorf("droppedOnSave = %v, want %d warnings", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	coded := errors.New(errors.ErrCodeNodeNotFound, "node %q not found", "a")
	if got, want := Describe(coded), `node "a" not found (NODE_NOT_FOUND)`; got != want {
		t.Errorf("Describe(coded) = %q, want %q", got, want)
	}
	if got := Describe(io.EOF); got != "EOF" {
		t.Errorf("Describe(io.EOF) = %q", got)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"new", "add", "rm", "raise", "move", "camera", "show", "inspect", "render", "serve", "store", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	path := newSceneFile(t)
	mustRun(t, "add", path, "--id", "alpha")
	mustRun(t, "add", path, "--id", "beta")
	mustRun(t, "add", path, "--id", "alps")

	got := nodeIDs(path, "al")
	if len(got) != 2 || !strings.HasPrefix(got[0], "alps\t") || !strings.HasPrefix(got[1], "alpha\t") {
		t.Errorf("nodeIDs = %q, want alps then alpha", got)
	}
	if nodeIDs(filepath.Join(t.TempDir(), "none.json"), "") != nil {
		t.Error("unreadable file should complete nothing")
	}

	script := mustRun(t, "completion", "bash")
	if !strings.Contains(script, "nodecanvas") {
		t.Error("bash completion should mention the binary")
	}
}

// =============================================================================
// Inspector
// =============================================================================

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInspectModel(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.json")

	ws := workspace.New(nil, nil)
	for _, id := range []scene.NodeID{"a", "b", "c"} {
		if _, err := ws.LoadNode(ctx, id, scene.NodeData{}); err != nil {
			t.Fatal(err)
		}
	}

	m := newInspectModel(ctx, ws, path)
	if len(m.rows) != 3 || m.cursor != 0 {
		t.Fatalf("initial rows = %d cursor = %d", len(m.rows), m.cursor)
	}

	step := func(msg tea.Msg) tea.Cmd {
		t.Helper()
		next, cmd := m.Update(msg)
		m = next.(inspectModel)
		return cmd
	}

	step(key("r")) // raise a
	if want := []scene.NodeID{"b", "c", "a"}; !equalIDs(ids(m.rows), want) {
		t.Fatalf("after raise order = %v, want %v", ids(m.rows), want)
	}
	if m.cursor != 2 || !m.dirty {
		t.Errorf("after raise cursor = %d dirty = %v", m.cursor, m.dirty)
	}

	step(tea.KeyMsg{Type: tea.KeyUp})
	step(key("d")) // remove c
	if want := []scene.NodeID{"b", "a"}; !equalIDs(ids(m.rows), want) {
		t.Fatalf("after delete order = %v, want %v", ids(m.rows), want)
	}

	if cmd := step(key("q")); cmd != nil || !m.confirmQuit {
		t.Fatal("first q with unsaved changes should ask for confirmation")
	}

	step(key("w"))
	if m.dirty || m.saved != 1 || m.err != nil {
		t.Fatalf("after write dirty = %v saved = %d err = %v", m.dirty, m.saved, m.err)
	}
	c, err := save.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []scene.NodeID{"b", "a"}; !equalIDs(c.ZOrder(), want) {
		t.Errorf("written order = %v, want %v", c.ZOrder(), want)
	}

	if cmd := step(key("q")); cmd == nil {
		t.Error("q after writing should quit")
	}
	if !strings.Contains(m.View(), "Inspect "+path) {
		t.Error("View should carry the file name")
	}
}

func TestInspectModelEmpty(t *testing.T) {
	m := newInspectModel(context.Background(), workspace.New(nil, nil), "empty.json")
	next, _ := m.Update(key("d"))
	m = next.(inspectModel)
	if m.dirty {
		t.Error("delete on an empty scene should change nothing")
	}
	if !strings.Contains(m.View(), "(empty scene)") {
		t.Error("View should note an empty scene")
	}
}
