package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"cipherstudio/internal/domain"
	"cipherstudio/internal/domain/models"
)

// Engine applies tree mutations for one project session. A Draft
// project mutates an in-memory LocalTreeStore; a Bound project mutates
// the server through a RemoteTreeStore. Either way the engine never
// trusts a locally predicted post-mutation tree: after every mutation
// it reloads the authoritative flat list and rebuilds, preserving
// folder toggle state and the active file's unsaved content.
//
// Operations are serialized by the engine's mutex, matching the one
// user action at a time model. Upload content decoding is the only
// background work; it is joined before any snapshot is written.
type Engine struct {
	mu      sync.Mutex
	store   TreeStore
	session *Session
	kv      KV
	logger  *slog.Logger

	draft       bool
	projectID   string
	projectName string

	roots []*Node
	byID  map[string]*Node

	// pendingContent holds content edits not yet pushed to the store,
	// keyed by file id. Rebuilds restore the active file's entry so a
	// refetch cannot clobber an edit in progress.
	pendingContent map[string]string

	// seq keys refetches; a reload result is dropped when a newer
	// reload started after it.
	seq uint64

	uploads   sync.WaitGroup
	scheduler *Scheduler
}

// NewDraftEngine creates an engine for a local-only draft project.
func NewDraftEngine(name string, kv KV, logger *slog.Logger) *Engine {
	e := &Engine{
		store:          NewLocalTreeStore(),
		session:        NewSession(),
		kv:             kv,
		logger:         logger,
		draft:          true,
		projectName:    name,
		byID:           map[string]*Node{},
		pendingContent: map[string]string{},
	}
	e.scheduler = NewScheduler(e.writeSnapshot, logger)
	return e
}

// RestoreDraftEngine rebuilds a draft engine from the last snapshot in
// kv. When no snapshot exists it returns a fresh empty draft.
func RestoreDraftEngine(name string, kv KV, logger *slog.Logger) (*Engine, error) {
	e := NewDraftEngine(name, kv, logger)

	snap, ok, err := LoadDraft(kv)
	if err != nil {
		return nil, err
	}
	if ok {
		if snap.ProjectName != "" {
			e.projectName = snap.ProjectName
		}
		e.store = NewLocalTreeStoreFrom(snap.Files)
	}
	if session, ok, err := LoadSession(kv); err == nil && ok {
		e.session = session
	}

	if err := e.Refresh(context.Background()); err != nil {
		return nil, err
	}

	// Reapply the toggle state the last snapshot recorded; restored
	// folders otherwise come back closed.
	e.mu.Lock()
	for _, id := range snap.OpenFolders {
		if n, ok := e.byID[id]; ok && n.IsFolder() {
			n.IsOpen = true
		}
	}
	e.mu.Unlock()

	return e, nil
}

// Bind transitions the engine to a server-backed project. Session and
// tree state from the previous project is cleared, not carried over,
// and the selection is remembered for restore on reload. There is no
// transition back: leaving a bound project means binding another one
// or creating a new draft engine.
func (e *Engine) Bind(ctx context.Context, store *RemoteTreeStore) error {
	e.mu.Lock()
	e.store = store
	e.draft = false
	e.projectID = store.ProjectID()
	e.session.Reset()
	e.roots = nil
	e.byID = map[string]*Node{}
	e.pendingContent = map[string]string{}
	e.mu.Unlock()

	if err := SaveSelectedProject(e.kv, e.projectID); err != nil {
		e.logger.Warn("failed to persist project selection", "error", err)
	}

	return e.Refresh(ctx)
}

// Draft reports whether the engine is in draft mode.
func (e *Engine) Draft() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Session returns the editor session state.
func (e *Engine) Session() *Session {
	return e.session
}

// Roots returns the current tree roots.
func (e *Engine) Roots() []*Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roots
}

// Node returns the node with the given id, if present.
func (e *Engine) Node(id string) (*Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.byID[id]
	return n, ok
}

// Refresh reloads the authoritative record list and rebuilds the tree.
// A result that arrives after a newer refresh has started is dropped.
func (e *Engine) Refresh(ctx context.Context) error {
	seq := atomic.AddUint64(&e.seq, 1)

	records, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != atomic.LoadUint64(&e.seq) {
		return nil
	}
	e.applyRecords(records)
	return nil
}

// Create adds a node and, for files, makes it the active tab. In a
// bound project the first file created in an empty project also
// scaffolds an index.js/index.css pair wired to it.
func (e *Engine) Create(ctx context.Context, name string, kind models.FileType, parentID *string, content string) (*Node, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: type must be 'file' or 'folder'", domain.ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	wasEmpty := len(e.byID) == 0

	if content == "" && kind == models.FileTypeFile {
		content = DefaultContent(name)
	}

	record, err := e.store.Create(ctx, CreateNode{
		Name:     name,
		Kind:     kind,
		ParentID: parentID,
		Content:  content,
	})
	if refreshErr := e.refreshLocked(ctx); refreshErr != nil && err == nil {
		err = refreshErr
	}
	if err != nil {
		return nil, err
	}

	if !e.draft && wasEmpty && kind == models.FileTypeFile && !isIndexFile(name) {
		e.scaffoldEntrypoint(ctx, name)
	}

	if kind == models.FileTypeFile {
		e.session.SelectFile(record.ID)
	}
	e.scheduleLocked()

	n, ok := e.byID[record.ID]
	if !ok {
		return nil, &domain.NotFoundError{Message: "created node missing after refresh"}
	}
	return n, nil
}

// Rename changes a node's name. Folder renames cascade new paths to
// every descendant.
func (e *Engine) Rename(ctx context.Context, id, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.store.Update(ctx, id, UpdateNode{Name: &newName})
	if refreshErr := e.refreshLocked(ctx); refreshErr != nil && err == nil {
		err = refreshErr
	}
	if err != nil {
		return err
	}

	e.scheduleLocked()
	return nil
}

// Move reparents a node. A nil newParentID moves it to root level.
// Folder moves cascade new paths to every descendant.
func (e *Engine) Move(ctx context.Context, id string, newParentID *string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.store.Update(ctx, id, UpdateNode{NewParent: &ParentRef{ID: newParentID}})
	if refreshErr := e.refreshLocked(ctx); refreshErr != nil && err == nil {
		err = refreshErr
	}
	if err != nil {
		return err
	}

	e.scheduleLocked()
	return nil
}

// Copy duplicates a node into the target scope under a new id, with a
// " (copy)" name suffix disambiguated against existing siblings.
// Copying a folder deep-copies its contents.
func (e *Engine) Copy(ctx context.Context, id string, newParentID *string) (*Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	src, ok := e.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "file not found"}
	}

	name := e.copyName(src.Name, newParentID)
	created, err := e.copySubtree(ctx, src, name, newParentID)
	if refreshErr := e.refreshLocked(ctx); refreshErr != nil && err == nil {
		err = refreshErr
	}
	if err != nil {
		return nil, err
	}

	e.scheduleLocked()

	n, ok := e.byID[created]
	if !ok {
		return nil, &domain.NotFoundError{Message: "copied node missing after refresh"}
	}
	return n, nil
}

// Delete removes a node and closes its tab. Non-empty folders are
// rejected.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.store.Delete(ctx, id)
	if refreshErr := e.refreshLocked(ctx); refreshErr != nil && err == nil {
		err = refreshErr
	}
	if err != nil {
		return err
	}

	e.session.CloseTab(id)
	delete(e.pendingContent, id)
	e.scheduleLocked()
	return nil
}

// ToggleFolder flips a folder's expansion state. Pure UI state; no
// store round trip, no cascade.
func (e *Engine) ToggleFolder(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.byID[id]
	if !ok {
		return &domain.NotFoundError{Message: "folder not found"}
	}
	if !n.IsFolder() {
		return fmt.Errorf("%w: not a folder", domain.ErrValidation)
	}

	n.IsOpen = !n.IsOpen
	e.scheduleLocked()
	return nil
}

// SelectFile makes id the active tab.
func (e *Engine) SelectFile(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.byID[id]
	if !ok {
		return &domain.NotFoundError{Message: "file not found"}
	}
	if n.IsFolder() {
		return fmt.Errorf("%w: cannot open a folder in a tab", domain.ErrValidation)
	}

	e.session.SelectFile(id)
	e.scheduleLocked()
	return nil
}

// CloseTab closes a tab without deleting the node.
func (e *Engine) CloseTab(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.CloseTab(id)
	delete(e.pendingContent, id)
	e.scheduleLocked()
}

// SetContent records an in-progress content edit. The store is not
// touched: drafts persist through the next autosave snapshot, bound
// projects through an explicit Save.
func (e *Engine) SetContent(id, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.byID[id]
	if !ok {
		return &domain.NotFoundError{Message: "file not found"}
	}
	if n.IsFolder() {
		return fmt.Errorf("%w: folders have no content", domain.ErrValidation)
	}

	n.Content = content
	n.Size = len(content)
	e.pendingContent[id] = content
	e.scheduleLocked()
	return nil
}

// Save persists explicitly, bypassing the debounce. Draft mode writes
// the full snapshot. Bound mode pushes the active file's pending
// content to the server; the debounce never auto-fires remote writes.
// A failed remote save leaves local edits in place.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.draft {
		e.mu.Unlock()
		e.uploads.Wait()
		return e.scheduler.Flush()
	}

	id := e.session.ActiveFile
	content, dirty := e.pendingContent[id]
	if id == "" || !dirty {
		e.mu.Unlock()
		return nil
	}

	_, err := e.store.Update(ctx, id, UpdateNode{Content: &content})
	if err == nil {
		delete(e.pendingContent, id)
		err = e.refreshLocked(ctx)
	}
	e.mu.Unlock()
	return err
}

// UploadFile is one externally supplied blob. Read is called off the
// engine's lock; it delivers the decoded text content.
type UploadFile struct {
	Name string
	Read func() (string, error)
}

// Upload creates a file node per blob under the given parent. Names
// colliding with existing siblings or each other are auto-disambiguated
// with a numeric suffix. Content arrives asynchronously as each blob is
// decoded; snapshots and explicit saves wait for all decodes to finish
// so no snapshot can capture a half-uploaded node.
func (e *Engine) Upload(ctx context.Context, files []UploadFile, parentID *string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	taken := e.siblingNames(parentID)

	for _, f := range files {
		name := disambiguate(f.Name, taken)
		taken[name] = true

		record, err := e.store.Create(ctx, CreateNode{
			Name:     name,
			Kind:     models.FileTypeFile,
			ParentID: parentID,
		})
		if err != nil {
			if refreshErr := e.refreshLocked(ctx); refreshErr != nil {
				e.logger.Warn("refresh after failed upload", "error", refreshErr)
			}
			return err
		}

		read := f.Read
		id := record.ID
		e.uploads.Add(1)
		go func() {
			defer e.uploads.Done()
			content, err := read()
			if err != nil {
				e.logger.Warn("upload decode failed", "id", id, "error", err)
				return
			}
			if _, err := e.store.Update(ctx, id, UpdateNode{Content: &content}); err != nil {
				e.logger.Warn("upload content write failed", "id", id, "error", err)
				return
			}
			if err := e.Refresh(ctx); err != nil {
				e.logger.Warn("refresh after upload", "id", id, "error", err)
			}
		}()
	}

	if err := e.refreshLocked(ctx); err != nil {
		return err
	}
	e.scheduleLocked()
	return nil
}

// WaitUploads blocks until all in-flight upload decodes have landed.
func (e *Engine) WaitUploads() {
	e.uploads.Wait()
}

// refreshLocked reloads and rebuilds with the mutex already held.
func (e *Engine) refreshLocked(ctx context.Context) error {
	atomic.AddUint64(&e.seq, 1)
	records, err := e.store.Load(ctx)
	if err != nil {
		return err
	}
	e.applyRecords(records)
	return nil
}

// applyRecords rebuilds the tree from records, carrying over folder
// toggle state and the active file's unsaved content. Unseen folders
// open by default only when the records come from a remote project;
// draft folders start closed.
func (e *Engine) applyRecords(records []models.File) {
	prev := &RebuildState{
		OpenFolders:  map[string]bool{},
		ActiveFileID: e.session.ActiveFile,
		DefaultOpen:  !e.draft,
	}
	for id, n := range e.byID {
		if n.IsFolder() {
			prev.OpenFolders[id] = n.IsOpen
		}
	}
	if content, ok := e.pendingContent[e.session.ActiveFile]; ok {
		prev.UnsavedContent = &content
	}

	e.roots = BuildTree(records, prev)
	e.byID = make(map[string]*Node, len(records))
	var index func(nodes []*Node)
	index = func(nodes []*Node) {
		for _, n := range nodes {
			e.byID[n.ID] = n
			index(n.Children)
		}
	}
	index(e.roots)
}

// scaffoldEntrypoint creates index.js and index.css alongside the first
// file of a project. Best effort: a scaffold failure never fails the
// create that triggered it.
func (e *Engine) scaffoldEntrypoint(ctx context.Context, componentFile string) {
	entries := []CreateNode{
		{Name: "index.js", Kind: models.FileTypeFile, Content: scaffoldIndexJS(componentFile)},
		{Name: "index.css", Kind: models.FileTypeFile, Content: scaffoldIndexCSS()},
	}
	for _, entry := range entries {
		if _, err := e.store.Create(ctx, entry); err != nil {
			e.logger.Warn("scaffold create failed", "name", entry.Name, "error", err)
		}
	}
	if err := e.refreshLocked(ctx); err != nil {
		e.logger.Warn("refresh after scaffold", "error", err)
	}
}

// copySubtree duplicates src (and, for folders, everything under it)
// into the target scope. Returns the new root node's id.
func (e *Engine) copySubtree(ctx context.Context, src *Node, name string, parentID *string) (string, error) {
	record, err := e.store.Create(ctx, CreateNode{
		Name:     name,
		Kind:     src.Kind,
		ParentID: parentID,
		Content:  src.Content,
	})
	if err != nil {
		return "", err
	}

	for _, child := range src.Children {
		if _, err := e.copySubtree(ctx, child, child.Name, &record.ID); err != nil {
			return "", err
		}
	}
	return record.ID, nil
}

// copyName picks "<name> (copy)" or "<name> (copy N)" so the duplicate
// does not collide in the target scope.
func (e *Engine) copyName(name string, parentID *string) string {
	taken := e.siblingNames(parentID)

	candidate := name + " (copy)"
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s (copy %d)", name, n)
	}
	return candidate
}

// siblingNames returns the names already used in a sibling scope.
func (e *Engine) siblingNames(parentID *string) map[string]bool {
	taken := map[string]bool{}
	for _, n := range e.byID {
		if samePointer(n.ParentID, parentID) {
			taken[n.Name] = true
		}
	}
	return taken
}

// scheduleLocked queues an autosave snapshot for draft projects. Bound
// projects only write local session state; content saves stay explicit.
func (e *Engine) scheduleLocked() {
	e.scheduler.Schedule()
}

// writeSnapshot is the scheduler's target. It joins uploads first so a
// snapshot never captures a node whose content has not arrived yet.
func (e *Engine) writeSnapshot() error {
	e.uploads.Wait()

	e.mu.Lock()
	draft := e.draft
	var snap DraftSnapshot
	if draft {
		snap = DraftSnapshot{
			ProjectName: e.projectName,
			Files:       Flatten(e.roots, e.projectID),
		}
		for id, n := range e.byID {
			if n.IsFolder() && n.IsOpen {
				snap.OpenFolders = append(snap.OpenFolders, id)
			}
		}
	}
	session := *e.session
	session.OpenFiles = append([]string(nil), e.session.OpenFiles...)
	e.mu.Unlock()

	if draft {
		if err := SaveDraft(e.kv, snap); err != nil {
			return err
		}
	}
	return SaveSession(e.kv, &session)
}

// disambiguate appends " (N)" before the extension until the name is
// free in taken.
func disambiguate(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}

	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i:]
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !taken[candidate] {
			return candidate
		}
	}
}

func isIndexFile(name string) bool {
	return name == "index.js" || name == "index.css"
}
