package extract

import (
	"errors"
	"testing"

	"depgraph/internal/engine/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type site struct {
	caller string
	callee string
}

func sites(fns FileFunctions) []site {
	out := make([]site, 0, len(fns.Calls))
	for _, c := range fns.Calls {
		out = append(out, site{caller: c.Caller.String(), callee: c.Callee})
	}
	return out
}

func ids(fns FileFunctions) []string {
	out := make([]string, 0, len(fns.Nodes))
	for _, n := range fns.Nodes {
		out = append(out, n.ID.String())
	}
	return out
}

func TestVisitFunctions_ModuleBodyOnly(t *testing.T) {
	fns := VisitFunctions(parse(t, "empty.py", "x = 1\n"))

	require.Len(t, fns.Nodes, 1)
	assert.True(t, fns.Nodes[0].ID.IsModuleBody())
	assert.Equal(t, []graph.ContainsEdge{{File: "empty.py", Function: graph.ModuleBodyID("empty.py")}}, fns.Contains)
	assert.Empty(t, fns.Calls)
}

func TestVisitFunctions_ScopeAttribution(t *testing.T) {
	src := `import helpers

def outer(a=default()):
    first()
    def inner():
        nested()
    after_inner()
    return inner

async def fetch():
    await client.get()

class Service:
    setup()

    @decorator()
    def method(self):
        self.save()

top_level()
handler = lambda: in_lambda()
`
	fns := VisitFunctions(parse(t, "app/mod.py", src))

	assert.Equal(t, []string{
		"app/mod.py:__module__:0",
		"app/mod.py:outer:3",
		"app/mod.py:inner:5",
		"app/mod.py:fetch:10",
		"app/mod.py:method:17",
	}, ids(fns))
	assert.Len(t, fns.Contains, 5)

	assert.Equal(t, []site{
		{"app/mod.py:outer:3", "default"},
		{"app/mod.py:outer:3", "first"},
		{"app/mod.py:inner:5", "nested"},
		{"app/mod.py:outer:3", "after_inner"},
		{"app/mod.py:fetch:10", "get"},
		{"app/mod.py:__module__:0", "setup"},
		{"app/mod.py:method:17", "decorator"},
		{"app/mod.py:method:17", "save"},
		{"app/mod.py:__module__:0", "top_level"},
		{"app/mod.py:__module__:0", "in_lambda"},
	}, sites(fns))
}

func TestVisitFunctions_DecoratorsBelongToDecoratedFunction(t *testing.T) {
	src := `def make():
    pass

def wrap(arg):
    return arg

@wrap(make())
@staticmethod
def other():
    pass

@register(make())
class Plugin:
    @cached
    async def load(self):
        fetch()
`
	fns := VisitFunctions(parse(t, "d.py", src))

	assert.Equal(t, []string{
		"d.py:__module__:0",
		"d.py:make:1",
		"d.py:wrap:4",
		"d.py:other:9",
		"d.py:load:15",
	}, ids(fns))
	assert.Equal(t, []site{
		{"d.py:other:9", "wrap"},
		{"d.py:other:9", "make"},
		{"d.py:__module__:0", "register"},
		{"d.py:__module__:0", "make"},
		{"d.py:load:15", "fetch"},
	}, sites(fns))
}

func TestVisitFunctions_SameNameNestedFunctions(t *testing.T) {
	src := `def wrap():
    def helper():
        pass
    return helper

def other():
    def helper():
        pass
    helper()
`
	fns := VisitFunctions(parse(t, "dup.py", src))

	assert.Equal(t, []string{
		"dup.py:__module__:0",
		"dup.py:wrap:1",
		"dup.py:helper:2",
		"dup.py:other:6",
		"dup.py:helper:7",
	}, ids(fns))
	assert.Equal(t, []site{{"dup.py:other:6", "helper"}}, sites(fns))
}

func TestVisitFunctions_CalleeNames(t *testing.T) {
	src := `a.foo()
b.c.foo()
bar()
make()()
items[0]()
get_obj().method()
print(len(x))
`
	fns := VisitFunctions(parse(t, "calls.py", src))

	var callees []string
	for _, c := range fns.Calls {
		callees = append(callees, c.Callee)
	}
	assert.Equal(t, []string{"foo", "foo", "bar", "make", "method", "get_obj", "print", "len"}, callees)
	for _, c := range fns.Calls {
		assert.True(t, c.Caller.IsModuleBody())
	}
}

func TestSkippedPart(t *testing.T) {
	file := graph.NewSourceFile("bad.py")
	part := SkippedPart(file, graph.SkipParse, errors.New("syntax error"))

	require.NotNil(t, part.Skipped)
	assert.Equal(t, graph.SkipParse, part.Skipped.Reason)
	assert.Equal(t, []graph.FunctionNode{graph.ModuleBodyNode("bad.py")}, part.Functions)
	assert.Len(t, part.Contains, 1)
	assert.Empty(t, part.DependsOn)
	assert.Empty(t, part.CallSites)
}

func TestFilePart(t *testing.T) {
	files := []graph.SourceFile{graph.NewSourceFile("main.py"), graph.NewSourceFile("utils.py")}
	idx := graph.NewModuleIndex(files)

	part := FilePart(files[0], parse(t, "main.py", "from utils import greet\n\ngreet()\n"), idx)
	assert.Nil(t, part.Skipped)
	assert.Equal(t, []graph.DependsOnEdge{{From: "main.py", To: "utils.py"}}, part.DependsOn)
	require.Len(t, part.CallSites, 1)
	assert.Equal(t, graph.CallSite{Caller: graph.ModuleBodyID("main.py"), Callee: "greet", Line: 3}, part.CallSites[0])
}
