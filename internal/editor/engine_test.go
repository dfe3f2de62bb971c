package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewDraftEngine("scratch", NewMemoryKV(), testLogger())
}

func TestCreateDerivesPathAndActivatesTab(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	folder, err := e.Create(ctx, "components", models.FileTypeFolder, nil, "")
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	if folder.Path != "/components" {
		t.Errorf("folder path = %q, want /components", folder.Path)
	}

	file, err := e.Create(ctx, "Button.jsx", models.FileTypeFile, &folder.ID, "x")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	if file.Path != "/components/Button.jsx" {
		t.Errorf("file path = %q, want /components/Button.jsx", file.Path)
	}

	if e.Session().ActiveFile != file.ID {
		t.Error("new file should become the active tab")
	}
	if e.Session().ActiveFile == folder.ID {
		t.Error("folders must not open tabs")
	}
}

func TestCreateRejectsDuplicateSibling(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Create(ctx, "app.js", models.FileTypeFile, nil, ""); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := e.Create(ctx, "app.js", models.FileTypeFile, nil, "")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate create error = %v, want ErrConflict", err)
	}

	if len(e.Roots()) != 1 {
		t.Errorf("state changed on rejected create: %d roots", len(e.Roots()))
	}
}

func TestCreateRejectsFileParent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	file, err := e.Create(ctx, "app.js", models.FileTypeFile, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = e.Create(ctx, "child.js", models.FileTypeFile, &file.ID, "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("create under a file error = %v, want ErrValidation", err)
	}
}

func TestRenameFolderCascadesDescendantPaths(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	src, err := e.Create(ctx, "src", models.FileTypeFolder, nil, "")
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	app, err := e.Create(ctx, "app.js", models.FileTypeFile, &src.ID, "console.log(1)\n")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}

	if err := e.Rename(ctx, src.ID, "source"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	child, ok := e.Node(app.ID)
	if !ok {
		t.Fatal("child vanished after rename")
	}
	if child.Path != "/source/app.js" {
		t.Errorf("child path = %q, want /source/app.js", child.Path)
	}
	if child.ID != app.ID {
		t.Error("rename must not change descendant ids")
	}
	if child.Content != "console.log(1)\n" {
		t.Error("rename must not change descendant content")
	}
}

func TestMoveToRootEmptiesFolder(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	components, err := e.Create(ctx, "components", models.FileTypeFolder, nil, "")
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	button, err := e.Create(ctx, "Button.jsx", models.FileTypeFile, &components.ID, "")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}

	if err := e.Move(ctx, button.ID, nil); err != nil {
		t.Fatalf("move: %v", err)
	}

	moved, _ := e.Node(button.ID)
	if moved.Path != "/Button.jsx" {
		t.Errorf("moved path = %q, want /Button.jsx", moved.Path)
	}

	// The folder has no children now, so deleting it must succeed.
	if err := e.Delete(ctx, components.ID); err != nil {
		t.Errorf("delete emptied folder: %v", err)
	}
}

func TestDeleteGuardsNonEmptyFolder(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	folder, err := e.Create(ctx, "docs", models.FileTypeFolder, nil, "")
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	file, err := e.Create(ctx, "notes.md", models.FileTypeFile, &folder.ID, "")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}

	if err := e.Delete(ctx, folder.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("delete non-empty folder error = %v, want ErrConflict", err)
	}

	if err := e.Delete(ctx, file.ID); err != nil {
		t.Fatalf("delete file: %v", err)
	}
	if e.Session().IsOpen(file.ID) {
		t.Error("deleting a file must close its tab")
	}
	if e.Session().ActiveFile == file.ID {
		t.Error("deleted file must not stay active")
	}
}

func TestToggleFolderIdempotence(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	folder, err := e.Create(ctx, "src", models.FileTypeFolder, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	before, _ := e.Node(folder.ID)
	initial := before.IsOpen

	if err := e.ToggleFolder(folder.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	mid, _ := e.Node(folder.ID)
	if mid.IsOpen == initial {
		t.Error("first toggle did not flip state")
	}

	if err := e.ToggleFolder(folder.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	after, _ := e.Node(folder.ID)
	if after.IsOpen != initial {
		t.Error("two toggles did not restore the original state")
	}
}

func TestToggleSurvivesRefresh(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	folder, err := e.Create(ctx, "src", models.FileTypeFolder, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := e.ToggleFolder(folder.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	closed, _ := e.Node(folder.ID)

	if err := e.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	after, _ := e.Node(folder.ID)
	if after.IsOpen != closed.IsOpen {
		t.Error("refresh clobbered folder toggle state")
	}
}

func TestDraftFoldersDefaultClosed(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	folder, err := e.Create(ctx, "src", models.FileTypeFolder, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if folder.IsOpen {
		t.Error("draft-created folder should start closed")
	}
}

func TestDraftToggleStateSurvivesRestore(t *testing.T) {
	kv := NewMemoryKV()
	e := NewDraftEngine("scratch", kv, testLogger())
	ctx := context.Background()

	open, err := e.Create(ctx, "src", models.FileTypeFolder, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	closed, err := e.Create(ctx, "docs", models.FileTypeFolder, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := e.ToggleFolder(open.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := e.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored, err := RestoreDraftEngine("scratch", kv, testLogger())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if n, ok := restored.Node(open.ID); !ok || !n.IsOpen {
		t.Error("expanded folder should come back open after restore")
	}
	if n, ok := restored.Node(closed.ID); !ok || n.IsOpen {
		t.Error("untouched folder should come back closed after restore")
	}
}

func TestCopyDeepCopiesFolders(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	folder, err := e.Create(ctx, "lib", models.FileTypeFolder, nil, "")
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	if _, err := e.Create(ctx, "util.js", models.FileTypeFile, &folder.ID, "export {}\n"); err != nil {
		t.Fatalf("create file: %v", err)
	}

	dup, err := e.Copy(ctx, folder.ID, nil)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}

	if dup.Name != "lib (copy)" {
		t.Errorf("copy name = %q, want 'lib (copy)'", dup.Name)
	}
	if dup.ID == folder.ID {
		t.Error("copy must mint a new id")
	}
	if len(dup.Children) != 1 {
		t.Fatalf("folder copy children = %d, want deep copy of 1", len(dup.Children))
	}
	child := dup.Children[0]
	if child.Name != "util.js" || child.Content != "export {}\n" {
		t.Errorf("copied child = %q/%q, want util.js with original content", child.Name, child.Content)
	}
	if child.Path != "/lib (copy)/util.js" {
		t.Errorf("copied child path = %q, want /lib (copy)/util.js", child.Path)
	}
}

func TestCopyDisambiguatesRepeatedCopies(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	file, err := e.Create(ctx, "a.txt", models.FileTypeFile, nil, "x")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := e.Copy(ctx, file.ID, nil)
	if err != nil {
		t.Fatalf("first copy: %v", err)
	}
	second, err := e.Copy(ctx, file.ID, nil)
	if err != nil {
		t.Fatalf("second copy: %v", err)
	}

	if first.Name != "a.txt (copy)" {
		t.Errorf("first copy name = %q", first.Name)
	}
	if second.Name != "a.txt (copy 2)" {
		t.Errorf("second copy name = %q", second.Name)
	}
}

func TestUploadDisambiguatesAndAwaitsContent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	files := []UploadFile{
		{Name: "a.txt", Read: func() (string, error) { return "first", nil }},
		{Name: "a.txt", Read: func() (string, error) { return "second", nil }},
	}

	if err := e.Upload(ctx, files, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}
	e.WaitUploads()
	if err := e.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	names := map[string]string{}
	for _, n := range e.Roots() {
		names[n.Name] = n.Content
	}
	if names["a.txt"] != "first" {
		t.Errorf("a.txt content = %q, want 'first'", names["a.txt"])
	}
	if names["a (1).txt"] != "second" {
		t.Errorf("disambiguated upload = %q, want 'second' under 'a (1).txt'", names["a (1).txt"])
	}
}

func TestSaveJoinsUploadsBeforeSnapshot(t *testing.T) {
	kv := NewMemoryKV()
	e := NewDraftEngine("scratch", kv, testLogger())
	ctx := context.Background()

	release := make(chan struct{})
	files := []UploadFile{
		{Name: "slow.txt", Read: func() (string, error) {
			<-release
			return "late content", nil
		}},
	}
	if err := e.Upload(ctx, files, nil); err != nil {
		t.Fatalf("upload: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Save(ctx) }()
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, ok, err := LoadDraft(kv)
	if err != nil || !ok {
		t.Fatalf("LoadDraft: ok=%v err=%v", ok, err)
	}
	if len(snap.Files) != 1 || snap.Files[0].Content != "late content" {
		t.Errorf("snapshot = %+v, want the decoded upload content", snap.Files)
	}
}

func TestBoundSavePushesActiveContent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	file, err := e.Create(ctx, "app.js", models.FileTypeFile, nil, "old")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Flip into bound mode against the same backing store; Save must go
	// through the store instead of the local snapshot.
	e.mu.Lock()
	e.draft = false
	e.mu.Unlock()

	if err := e.SetContent(file.ID, "new content"); err != nil {
		t.Fatalf("set content: %v", err)
	}
	if err := e.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	records, err := e.store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records[0].Content != "new content" {
		t.Errorf("stored content = %q, want 'new content'", records[0].Content)
	}
}

func TestBoundFirstFileScaffoldsEntrypoint(t *testing.T) {
	e := newTestEngine(t)
	e.mu.Lock()
	e.draft = false
	e.mu.Unlock()
	ctx := context.Background()

	if _, err := e.Create(ctx, "App.jsx", models.FileTypeFile, nil, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	found := map[string]bool{}
	for _, n := range e.Roots() {
		found[n.Name] = true
	}
	for _, want := range []string{"App.jsx", "index.js", "index.css"} {
		if !found[want] {
			t.Errorf("expected %s after first create, tree has %v", want, found)
		}
	}
}

// gateStore delays the first Load until released, simulating a slow
// refetch that is superseded by a later mutation. entered is closed
// once the slow Load has captured its records.
type gateStore struct {
	TreeStore
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (g *gateStore) Load(ctx context.Context) ([]models.File, error) {
	slow := false
	g.once.Do(func() { slow = true })
	if !slow {
		return g.TreeStore.Load(ctx)
	}

	records, err := g.TreeStore.Load(ctx)
	close(g.entered)
	<-g.gate
	return records, err
}

func TestStaleRefreshResponseIsDropped(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	gate := &gateStore{
		TreeStore: e.store,
		entered:   make(chan struct{}),
		gate:      make(chan struct{}),
	}
	e.mu.Lock()
	e.store = gate
	e.mu.Unlock()

	// Start a refresh whose response will arrive late.
	stale := make(chan error, 1)
	go func() { stale <- e.Refresh(ctx) }()
	<-gate.entered

	// A mutation lands while the first refetch is still in flight. Its
	// own refresh bumps the sequence past the stale one.
	file, err := e.Create(ctx, "fresh.js", models.FileTypeFile, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	close(gate.gate)
	if err := <-stale; err != nil {
		t.Fatalf("stale refresh: %v", err)
	}

	if _, ok := e.Node(file.ID); !ok {
		t.Error("stale refetch response overwrote the newer tree")
	}
}
