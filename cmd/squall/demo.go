package main

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/dshills/squall/internal/component"
	"github.com/dshills/squall/internal/snapshot"
	"github.com/dshills/squall/internal/state"
)

// seedState installs the initial demo document.
func seedState(st *state.Store) error {
	if err := st.Set("demo.count", 0); err != nil {
		return err
	}
	if err := st.Set("demo.selected", 0); err != nil {
		return err
	}
	return st.Set("demo.todos", []any{
		map[string]any{"id": "t1", "title": "ship the runtime", "done": false},
		map[string]any{"id": "t2", "title": "write the demo", "done": true},
		map[string]any{"id": "t3", "title": "profile the reconciler", "done": false},
	})
}

// rootView composes the demo screen. The header and footer are static; the
// counter and todo list mount as child components with their own state
// subscriptions, so only the section that changed re-renders.
func rootView() component.Component {
	return component.Func(func(ctx *component.RenderContext) *snapshot.Node {
		return snapshot.El("div",
			snapshot.Attr("class", "screen"),
			snapshot.El("h1", snapshot.Text("squall demo")),
			component.Child("counter", newCounter, nil),
			component.Child("todos", newTodoList, nil),
			snapshot.El("footer",
				snapshot.Text("+/- count  j/k select  x toggle  r rotate  a add  d delete  q quit"),
			),
		)
	})
}

// counter shows the shared click counter.
type counter struct{}

func newCounter() component.Component { return counter{} }

func (counter) StatePaths() []string { return []string{"demo.count"} }

func (counter) Render(ctx *component.RenderContext) *snapshot.Node {
	n := ctx.Store().Result("demo.count").Int()
	return snapshot.El("section",
		snapshot.Attr("class", "counter"),
		snapshot.El("p", snapshot.Text(fmt.Sprintf("count: %d", n))),
	)
}

// todoList renders one keyed child per todo, so reordering the array moves
// the item subtrees instead of rebuilding them.
type todoList struct{}

func newTodoList() component.Component { return todoList{} }

func (todoList) StatePaths() []string { return []string{"demo.todos", "demo.selected"} }

func (todoList) Render(ctx *component.RenderContext) *snapshot.Node {
	todos, _ := ctx.State("demo.todos").([]any)
	selected := int(ctx.Store().Result("demo.selected").Int())

	parts := []snapshot.Part{snapshot.Attr("class", "todos")}
	for i, raw := range todos {
		todo, _ := raw.(map[string]any)
		id, _ := todo["id"].(string)
		parts = append(parts, component.Child(id, newTodoItem, map[string]any{
			"title":    todo["title"],
			"done":     todo["done"],
			"selected": i == selected,
		}))
	}
	return snapshot.El("ul", parts...)
}

// todoItem renders one todo row from props alone.
type todoItem struct{}

func newTodoItem() component.Component { return todoItem{} }

func (todoItem) Render(ctx *component.RenderContext) *snapshot.Node {
	title, _ := ctx.Prop("title").(string)
	done, _ := ctx.Prop("done").(bool)
	selected, _ := ctx.Prop("selected").(bool)

	mark := "[ ]"
	if done {
		mark = "[x]"
	}
	cursor := "  "
	if selected {
		cursor = "> "
	}
	class := "todo"
	if done {
		class = "todo done"
	}
	return snapshot.El("li",
		snapshot.Attr("class", class),
		snapshot.Text(cursor+mark+" "+title),
	)
}

// handleKey applies one key press to the demo state. It reports whether the
// user asked to quit.
func handleKey(st *state.Store, r rune) (bool, error) {
	switch r {
	case 'q':
		return true, nil
	case '+', '=':
		return false, adjustCount(st, 1)
	case '-', '_':
		return false, adjustCount(st, -1)
	case 'j':
		return false, moveSelection(st, 1)
	case 'k':
		return false, moveSelection(st, -1)
	case 'x', ' ':
		return false, toggleSelected(st)
	case 'r':
		return false, rotateTodos(st)
	case 'a':
		return false, addTodo(st)
	case 'd':
		return false, deleteSelected(st)
	}
	return false, nil
}

func adjustCount(st *state.Store, delta int) error {
	n := st.Result("demo.count").Int()
	return st.Set("demo.count", int(n)+delta)
}

func todosFrom(st *state.Store) []any {
	todos, _ := st.Get("demo.todos").([]any)
	return todos
}

func moveSelection(st *state.Store, delta int) error {
	todos := todosFrom(st)
	if len(todos) == 0 {
		return nil
	}
	next := int(st.Result("demo.selected").Int()) + delta
	if next < 0 {
		next = 0
	}
	if next >= len(todos) {
		next = len(todos) - 1
	}
	return st.Set("demo.selected", next)
}

func toggleSelected(st *state.Store) error {
	todos := todosFrom(st)
	sel := int(st.Result("demo.selected").Int())
	if sel < 0 || sel >= len(todos) {
		return nil
	}
	done := st.Result(fmt.Sprintf("demo.todos.%d.done", sel)).Bool()
	return st.Set(fmt.Sprintf("demo.todos.%d.done", sel), !done)
}

func rotateTodos(st *state.Store) error {
	todos := todosFrom(st)
	if len(todos) < 2 {
		return nil
	}
	rotated := append(append([]any{}, todos[1:]...), todos[0])
	return st.Set("demo.todos", rotated)
}

func addTodo(st *state.Store) error {
	todos := todosFrom(st)
	todo := map[string]any{
		"id":    ulid.Make().String(),
		"title": fmt.Sprintf("task %d", len(todos)+1),
		"done":  false,
	}
	return st.Set("demo.todos", append(todos, any(todo)))
}

func deleteSelected(st *state.Store) error {
	todos := todosFrom(st)
	sel := int(st.Result("demo.selected").Int())
	if sel < 0 || sel >= len(todos) {
		return nil
	}
	rest := append(append([]any{}, todos[:sel]...), todos[sel+1:]...)
	if err := st.Set("demo.todos", rest); err != nil {
		return err
	}
	if sel >= len(rest) && sel > 0 {
		return st.Set("demo.selected", len(rest)-1)
	}
	return nil
}
