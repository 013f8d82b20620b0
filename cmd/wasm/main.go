//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"syscall/js"
	"time"

	"github.com/hack-pad/hackpadfs/indexeddb"

	"github.com/kittclouds/tagkitt/internal/store"
	"github.com/kittclouds/tagkitt/pkg/schemas"
	"github.com/kittclouds/tagkitt/pkg/tags"
)

// Version info
const Version = "0.1.0"

// Global state
var session *schemas.Session
var cache *schemas.Loader // grammar cache in IndexedDB, nil when unavailable

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	session = schemas.NewSession(store.NewMemStore(), schemas.WithLogger(logger))

	fs, err := indexeddb.NewFS(context.Background(), "tagkitt", indexeddb.Options{})
	if err != nil {
		println("[TagKitt] WARN: grammar cache unavailable:", err.Error())
	} else {
		cache = schemas.NewLoader(fs, logger)
	}

	println("[TagKitt] WASM Ready v" + Version)

	// Register exports
	js.Global().Set("TagKitt", js.ValueOf(map[string]interface{}{
		"version":         js.FuncOf(getVersion),
		"loadSchema":      js.FuncOf(loadSchema),
		"restoreSchema":   js.FuncOf(restoreSchema),
		"childrenForPath": js.FuncOf(childrenForPath),
		"parentsForPath":  js.FuncOf(parentsForPath),
		"filter":          js.FuncOf(filter),
		"operations":      js.FuncOf(operations),
		"attributes":      js.FuncOf(attributes),
		"documentation":   js.FuncOf(documentation),
		"search":          js.FuncOf(search),
		"roots":           js.FuncOf(roots),
	}))

	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

func cachePath(id string) string { return "schemas/" + id + ".json" }

// loadSchema builds and activates a schema.
// Args: [id string, grammarJSON string, metaJSON? string]
// metaJSON: {"name": ..., "roots": [...], "css": ...}
func loadSchema(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: id (string), grammarJSON (string)")
	}

	start := time.Now()
	rec := &store.SchemaRecord{
		ID:          args[0].String(),
		GrammarJSON: args[1].String(),
		UpdatedAt:   start.Unix(),
	}
	if len(args) > 2 && args[2].Type() == js.TypeString {
		if err := json.Unmarshal([]byte(args[2].String()), rec); err != nil {
			return errorResult("meta json: " + err.Error())
		}
		rec.ID = args[0].String()
	}
	if rec.Name == "" {
		rec.Name = rec.ID
	}

	act, err := activate(rec)
	if err != nil {
		return errorResult(err.Error())
	}

	if cache != nil {
		if err := cache.Write(cachePath(rec.ID), []byte(rec.GrammarJSON)); err != nil {
			println("[TagKitt] WARN: failed to cache grammar:", err.Error())
		}
	}

	warnings := make([]string, 0)
	for _, w := range act.Engine.Store().Warnings() {
		warnings = append(warnings, w.Error())
	}
	return jsonResult(map[string]interface{}{
		"success":   "loaded " + rec.ID,
		"elements":  len(act.Engine.Store().ElementNames()),
		"warnings":  warnings,
		"timing_us": time.Since(start).Microseconds(),
	})
}

// activate registers rec and makes it the current schema.
func activate(rec *store.SchemaRecord) (*schemas.Active, error) {
	if err := session.Registry().UpsertSchema(rec); err != nil {
		return nil, err
	}
	return session.Activate(rec.ID)
}

// restoreSchema activates a schema from the grammar cache.
// Args: [id string]
func restoreSchema(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: id (string)")
	}
	if cache == nil {
		return errorResult("grammar cache unavailable")
	}
	id := args[0].String()
	data, err := cache.Read(cachePath(id))
	if err != nil {
		return errorResult(err.Error())
	}
	if _, err := activate(&store.SchemaRecord{ID: id, Name: id, GrammarJSON: string(data)}); err != nil {
		return errorResult(err.Error())
	}
	return successResult("restored " + id)
}

func currentEngine() (*tags.Engine, interface{}) {
	e := session.Engine()
	if e == nil {
		return nil, errorResult("no schema loaded")
	}
	return e, nil
}

// childrenForPath lists the tags allowed inside the element at path.
// Args: [path string]
func childrenForPath(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: path (string)")
	}
	e, errRes := currentEngine()
	if e == nil {
		return errRes
	}
	return candidatesResult(e.ChildrenForPath(args[0].String()))
}

// parentsForPath lists the tags that may contain the element at path.
// Args: [path string]
func parentsForPath(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: path (string)")
	}
	e, errRes := currentEngine()
	if e == nil {
		return errRes
	}
	return candidatesResult(e.ParentsForPath(args[0].String()))
}

// insertionContext is the document context sent by the editor, plus the
// tag an insertion is relative to and an optional search box query.
type insertionContext struct {
	tags.DocumentContext
	Anchor *tags.Tag `json:"anchor,omitempty"`
	Query  string    `json:"query,omitempty"`
}

// filter lists the children of path that still fit the live document.
// Args: [path string, contextJSON string]
func filter(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: path (string), contextJSON (string)")
	}
	e, errRes := currentEngine()
	if e == nil {
		return errRes
	}

	var ctx insertionContext
	if err := json.Unmarshal([]byte(args[1].String()), &ctx); err != nil {
		return errorResult("context json: " + err.Error())
	}

	cands := tags.FilterByPresentTags(e.ChildrenForPath(args[0].String()), ctx.PresentTags)
	dir := ctx.Direction
	if dir == "" {
		dir = tags.Both
	}
	cands = tags.LimitByPosition(cands, dir, ctx.Anchor, ctx.DocumentContext)
	return candidatesResult(tags.Unique(e.FilterCandidates(cands, ctx.Query)))
}

// operations decides the tagging menu for an editor selection.
// Args: [selectionJSON string]
func operations(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: selectionJSON (string)")
	}
	e, errRes := currentEngine()
	if e == nil {
		return errRes
	}

	var sel tags.Selection
	if err := json.Unmarshal([]byte(args[0].String()), &sel); err != nil {
		return errorResult("selection json: " + err.Error())
	}
	return jsonResult(e.Operations(sel))
}

// attributes lists the attributes of the element at path.
// Args: [path string]
func attributes(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: path (string)")
	}
	e, errRes := currentEngine()
	if e == nil {
		return errRes
	}
	attrs := e.AttributesForPath(args[0].String())
	if attrs == nil {
		attrs = []tags.Attribute{}
	}
	return jsonResult(attrs)
}

// documentation returns the documentation of a tag name.
// Args: [name string]
func documentation(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: name (string)")
	}
	e, errRes := currentEngine()
	if e == nil {
		return errRes
	}
	name := args[0].String()
	return jsonResult(map[string]string{
		"name":          name,
		"fullName":      e.FullName(name),
		"documentation": e.Documentation(name),
	})
}

// search ranks the schema's tags against a free-text query.
// Args: [query string, limit? int]
func search(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1+ args: query (string), [limit (int)]")
	}
	e, errRes := currentEngine()
	if e == nil {
		return errRes
	}
	limit := 0
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		limit = args[1].Int()
	}
	return jsonResult(e.Search(args[0].String(), limit))
}

// roots lists the tags a new document may start with.
func roots(this js.Value, args []js.Value) interface{} {
	act := session.Current()
	if act == nil {
		return errorResult("no schema loaded")
	}
	cands, err := act.Roots()
	if err != nil {
		return errorResult(err.Error())
	}
	return candidatesResult(cands)
}

func candidatesResult(cands []tags.Candidate) interface{} {
	if cands == nil {
		cands = []tags.Candidate{}
	}
	return jsonResult(cands)
}

func jsonResult(v interface{}) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return string(jsonBytes)
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
