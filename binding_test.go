package bind

import (
	"errors"
	"testing"
)

type capturedUpdate struct {
	updates []Update
}

func (c *capturedUpdate) target(u Update) {
	c.updates = append(c.updates, u)
}

func newBoundGraph(t *testing.T) (*Engine, *Object, *Object, *Object, *capturedUpdate, *Binding) {
	t.Helper()
	app, todo, title := buildGraph()
	e := New()
	if err := e.Register("app", app); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	captured := &capturedUpdate{}
	b, err := e.Bind("app.todos.first.text", captured.target)
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	return e, app, todo, title, captured, b
}

func TestBindInitialValue(t *testing.T) {
	_, _, _, _, _, b := newBoundGraph(t)

	value, present := b.Value()
	if !present || value != "buy milk" {
		t.Fatalf("expected initial terminal value, got %v present=%v", value, present)
	}
	if !b.Active() || b.Dirty() {
		t.Fatalf("expected an active, clean binding, got active=%v dirty=%v", b.Active(), b.Dirty())
	}
}

func TestBindNilTarget(t *testing.T) {
	e := New()
	if _, err := e.Bind("app.title", nil); err == nil {
		t.Fatal("expected error for nil target")
	}
}

func TestLeafMutationDeliversOnFlush(t *testing.T) {
	e, _, _, title, captured, _ := newBoundGraph(t)

	if err := title.Set("text", "write docs"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if len(captured.updates) != 0 {
		t.Fatal("expected no delivery before the flush")
	}
	if e.Pending() != 1 {
		t.Fatalf("expected one pending binding, got %d", e.Pending())
	}

	e.Flush()
	if len(captured.updates) != 1 {
		t.Fatalf("expected exactly one delivery, got %d", len(captured.updates))
	}
	got := captured.updates[0]
	if got.Value != "write docs" || !got.Present || got.Path != "app.todos.first.text" {
		t.Fatalf("unexpected update %+v", got)
	}
}

func TestMutationsCoalesceWithinOneTurn(t *testing.T) {
	e, _, _, title, captured, _ := newBoundGraph(t)

	e.Run(func() {
		_ = title.Set("text", "a")
		_ = title.Set("text", "b")
		_ = title.Set("text", "c")
	})

	if len(captured.updates) != 1 {
		t.Fatalf("expected one coalesced delivery, got %d", len(captured.updates))
	}
	if captured.updates[0].Value != "c" {
		t.Fatalf("expected the final value, got %v", captured.updates[0].Value)
	}
}

func TestIntermediateReplacementRewiresSuffix(t *testing.T) {
	e, _, todo, oldTitle, captured, b := newBoundGraph(t)

	newTitle := ObjectFromMap(map[string]any{"text": "new text"})
	if err := todo.Set("first", newTitle); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	e.Flush()

	if len(captured.updates) != 1 || captured.updates[0].Value != "new text" {
		t.Fatalf("expected the re-resolved terminal value, got %+v", captured.updates)
	}

	// the old leaf must no longer feed the binding
	if err := oldTitle.Set("text", "stale write"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	e.Flush()
	if len(captured.updates) != 1 {
		t.Fatalf("expected no delivery from the detached object, got %d", len(captured.updates))
	}

	// the new leaf must
	if err := newTitle.Set("text", "fresh write"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	e.Flush()
	if len(captured.updates) != 2 || captured.updates[1].Value != "fresh write" {
		t.Fatalf("expected delivery from the new object, got %+v", captured.updates)
	}

	if value, present := b.Value(); !present || value != "fresh write" {
		t.Fatalf("expected binding value to track, got %v present=%v", value, present)
	}
}

func TestGrandparentAndParentChangeDeliverOnce(t *testing.T) {
	e, app, _, _, captured, _ := newBoundGraph(t)

	e.Run(func() {
		replacement := ObjectFromMap(map[string]any{
			"first": map[string]any{"text": "from new todos"},
		})
		_ = app.Set("todos", replacement)
		first, _ := replacement.Get("first")
		_ = first.(*Object).Set("text", "final value")
	})

	if len(captured.updates) != 1 {
		t.Fatalf("expected one coalesced delivery, got %d", len(captured.updates))
	}
	if captured.updates[0].Value != "final value" {
		t.Fatalf("expected the final value after both changes, got %v", captured.updates[0].Value)
	}
}

func TestNilIntermediateDeliversAbsent(t *testing.T) {
	e, _, todo, _, captured, b := newBoundGraph(t)

	if err := todo.Set("first", nil); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	e.Flush()

	if len(captured.updates) != 1 {
		t.Fatalf("expected one delivery, got %d", len(captured.updates))
	}
	got := captured.updates[0]
	if got.Present || got.Value != nil {
		t.Fatalf("expected an absent update, got %+v", got)
	}
	if b.Reason() != ReasonBrokenChain {
		t.Fatalf("expected a broken chain, got %v", b.Reason())
	}
}

func TestChainRecoversAfterBreak(t *testing.T) {
	e, _, todo, _, captured, b := newBoundGraph(t)

	_ = todo.Set("first", nil)
	e.Flush()

	restored := ObjectFromMap(map[string]any{"text": "restored"})
	_ = todo.Set("first", restored)
	e.Flush()

	if len(captured.updates) != 2 {
		t.Fatalf("expected two deliveries, got %d", len(captured.updates))
	}
	got := captured.updates[1]
	if !got.Present || got.Value != "restored" {
		t.Fatalf("expected the restored value, got %+v", got)
	}
	if b.Reason() != ReasonNone {
		t.Fatalf("expected the reason to clear, got %v", b.Reason())
	}
}

func TestBindUnresolvedRoot(t *testing.T) {
	e := New()
	captured := &capturedUpdate{}

	b, err := e.Bind("missing.title", captured.target)
	if !errors.Is(err, ErrUnresolvedRoot) {
		t.Fatalf("expected ErrUnresolvedRoot, got %v", err)
	}
	if b == nil {
		t.Fatal("expected the binding to be returned alongside the error")
	}
	if _, present := b.Value(); present {
		t.Fatal("expected an absent value")
	}

	// registering the root afterwards does not re-resolve by itself
	if err := e.Register("missing", ObjectFromMap(map[string]any{"title": "late"})); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	e.Flush()
	if len(captured.updates) != 0 {
		t.Fatalf("expected no delivery from a registry mutation alone, got %d", len(captured.updates))
	}
}

func TestBindWithLocalRoot(t *testing.T) {
	e := New()
	local := ObjectFromMap(map[string]any{"todo": map[string]any{"title": "local"}})
	captured := &capturedUpdate{}

	b, err := e.Bind("todo.title", captured.target, WithRoot(local))
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if value, present := b.Value(); !present || value != "local" {
		t.Fatalf("expected the local value, got %v present=%v", value, present)
	}

	todo, _ := local.Get("todo")
	_ = todo.(*Object).Set("title", "updated")
	e.Flush()
	if len(captured.updates) != 1 || captured.updates[0].Value != "updated" {
		t.Fatalf("expected delivery from the local graph, got %+v", captured.updates)
	}
}

func TestBindEmptyPathYieldsRoot(t *testing.T) {
	e := New()
	root := NewObject()

	b, err := e.Bind("", func(Update) {}, WithRoot(root))
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if value, present := b.Value(); !present || value != root {
		t.Fatalf("expected the root itself, got %v present=%v", value, present)
	}
}

func TestDeactivateStopsDeliveries(t *testing.T) {
	e, _, _, title, captured, b := newBoundGraph(t)

	b.Deactivate()
	if b.Active() {
		t.Fatal("expected the binding to be inactive")
	}

	_ = title.Set("text", "after deactivate")
	e.Flush()
	if len(captured.updates) != 0 {
		t.Fatalf("expected no delivery after deactivation, got %d", len(captured.updates))
	}

	// idempotent
	b.Deactivate()
}

func TestDeactivateDuringOwnFlush(t *testing.T) {
	app, _, title := buildGraph()
	e := New()
	if err := e.Register("app", app); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	calls := 0
	var b *Binding
	var err error
	b, err = e.Bind("app.todos.first.text", func(Update) {
		calls++
		b.Deactivate()
	})
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	_ = title.Set("text", "first turn")
	e.Flush()
	if calls != 1 {
		t.Fatalf("expected one delivery, got %d", calls)
	}

	_ = title.Set("text", "second turn")
	e.Flush()
	if calls != 1 {
		t.Fatalf("expected no delivery after self-deactivation, got %d", calls)
	}
}

func TestDeactivateSiblingDuringFlush(t *testing.T) {
	app, _, title := buildGraph()
	e := New()
	if err := e.Register("app", app); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	var second *Binding
	secondCalls := 0
	first, err := e.Bind("app.todos.first.text", func(Update) {
		second.Deactivate()
	})
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	second, err = e.Bind("app.todos.first.text", func(Update) {
		secondCalls++
	})
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	_ = first

	_ = title.Set("text", "turn")
	e.Flush()
	if secondCalls != 0 {
		t.Fatalf("expected the deactivated sibling to be skipped, got %d deliveries", secondCalls)
	}
}

func TestReDirtyDuringOwnFlushCarriesToNextTurn(t *testing.T) {
	app, _, title := buildGraph()
	e := New()
	if err := e.Register("app", app); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	var values []any
	_, err := e.Bind("app.todos.first.text", func(u Update) {
		values = append(values, u.Value)
		if u.Value == "first turn" {
			_ = title.Set("text", "second turn")
		}
	})
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	_ = title.Set("text", "first turn")
	e.Flush()
	if len(values) != 1 {
		t.Fatalf("expected one delivery in the first turn, got %v", values)
	}
	if e.Pending() != 1 {
		t.Fatalf("expected the re-dirtied binding to stay queued, got %d", e.Pending())
	}

	e.Flush()
	if len(values) != 2 || values[1] != "second turn" {
		t.Fatalf("expected the carried delivery in the next turn, got %v", values)
	}
}

func TestFlushOrderFollowsFirstDirtied(t *testing.T) {
	app := ObjectFromMap(map[string]any{"a": 1, "b": 2})
	e := New()
	if err := e.Register("app", app); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	var order []string
	if _, err := e.Bind("app.a", func(Update) { order = append(order, "a") }); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}
	if _, err := e.Bind("app.b", func(Update) { order = append(order, "b") }); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	e.Run(func() {
		_ = app.Set("b", 20)
		_ = app.Set("a", 10)
		_ = app.Set("b", 200)
	})

	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Fatalf("expected first-dirtied order, got %v", order)
	}
}

func TestTransformAppliedOnFlush(t *testing.T) {
	app := ObjectFromMap(map[string]any{"count": 2})
	e := New()
	if err := e.Register("app", app); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	var got Update
	_, err := e.Bind("app.count", func(u Update) { got = u }, WithTransform("value * 10"))
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	_ = app.Set("count", 3)
	e.Flush()
	if got.Value != 30 {
		t.Fatalf("expected the transformed value, got %v", got.Value)
	}
}

func TestTransformErrorDeliversRawValue(t *testing.T) {
	app := ObjectFromMap(map[string]any{"count": 2})
	e := New()
	if err := e.Register("app", app); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	var got Update
	_, err := e.Bind("app.count", func(u Update) { got = u }, WithTransform(`value + "boom"`))
	if err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	_ = app.Set("count", 5)
	e.Flush()
	if got.Value != 5 {
		t.Fatalf("expected the raw value when the transform fails, got %v", got.Value)
	}
}

func TestBindInvalidTransform(t *testing.T) {
	e := New()
	if _, err := e.Bind("app.count", func(Update) {}, WithTransform("value +")); err == nil {
		t.Fatal("expected compile error for a malformed transform")
	}
}

func TestStaleIntermediateCleanupSwallowed(t *testing.T) {
	e, app, todo, _, captured, b := newBoundGraph(t)

	// destroy the intermediate, then replace it: the dropped listener's
	// removal hits a stale owner and must not surface
	todo.Destroy()
	replacement := ObjectFromMap(map[string]any{
		"first": map[string]any{"text": "rebuilt"},
	})
	if err := app.Set("todos", replacement); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	e.Flush()

	if len(captured.updates) != 1 || captured.updates[0].Value != "rebuilt" {
		t.Fatalf("expected the rebuilt value, got %+v", captured.updates)
	}
	if value, present := b.Value(); !present || value != "rebuilt" {
		t.Fatalf("expected the binding to track, got %v present=%v", value, present)
	}
}

func TestRegistryOverwriteDoesNotRebindExisting(t *testing.T) {
	e, _, _, title, captured, _ := newBoundGraph(t)

	other := ObjectFromMap(map[string]any{
		"todos": map[string]any{"first": map[string]any{"text": "other"}},
	})
	if err := e.Register("app", other); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	e.Flush()
	if len(captured.updates) != 0 {
		t.Fatalf("expected no delivery from a registry overwrite alone, got %d", len(captured.updates))
	}

	// the binding still tracks the graph it was wired to
	_ = title.Set("text", "still wired")
	e.Flush()
	if len(captured.updates) != 1 || captured.updates[0].Value != "still wired" {
		t.Fatalf("expected the original graph to keep feeding the binding, got %+v", captured.updates)
	}
}
