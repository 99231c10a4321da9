package sink

import (
	"strings"
	"testing"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

func testScene() *scene.GeometryCache {
	c := scene.New()
	scene.LoadNode(c, "a", scene.NodeData{Position: geom.V(0, 0), Label: "Source"})
	scene.LoadNode(c, "b", scene.NodeData{
		Position: geom.V(200, 50),
		Label:    "Sink <1>",
		Inputs: []scene.InputData{
			{Source: "a", Selectable: true},
			{Selectable: true},
			{Selectable: false},
		},
	})
	return c
}

func TestRenderSVGPaintsInZOrder(t *testing.T) {
	c := testScene()
	svg := string(RenderSVG(c))

	ia := strings.Index(svg, `id="node-a"`)
	ib := strings.Index(svg, `id="node-b"`)
	if ia < 0 || ib < 0 {
		t.Fatalf("missing node groups in output:\n%s", svg)
	}
	if ia > ib {
		t.Error("node a should be painted before node b")
	}

	scene.Raise(c, "a")
	svg = string(RenderSVG(c))
	if strings.Index(svg, `id="node-a"`) < strings.Index(svg, `id="node-b"`) {
		t.Error("after Raise, node a should be painted last")
	}
}

func TestRenderSVGWiresBeneathNodes(t *testing.T) {
	svg := string(RenderSVG(testScene()))

	if n := strings.Count(svg, `class="wire"`); n != 1 {
		t.Fatalf("wire count = %d, want 1", n)
	}
	if strings.Index(svg, `class="wire"`) > strings.Index(svg, `class="node"`) {
		t.Error("wires should be painted before nodes")
	}
	if !strings.Contains(svg, `data-from="a" data-to="b" data-input="0"`) {
		t.Error("wire should reference its endpoints")
	}

	svg = string(RenderSVG(testScene(), WithoutWires()))
	if strings.Contains(svg, `class="wire"`) {
		t.Error("WithoutWires should omit the wire layer")
	}
}

func TestRenderSVGPorts(t *testing.T) {
	svg := string(RenderSVG(testScene()))

	tests := []struct {
		class string
		want  int
	}{
		{`class="port connected"`, 1},
		{`class="port"`, 1},
		{`class="port locked"`, 1},
		{`class="port-out"`, 2},
	}
	for _, tt := range tests {
		if got := strings.Count(svg, tt.class); got != tt.want {
			t.Errorf("count(%s) = %d, want %d", tt.class, got, tt.want)
		}
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	svg := string(RenderSVG(testScene()))
	if strings.Contains(svg, "Sink <1>") {
		t.Error("label should be XML-escaped")
	}
	if !strings.Contains(svg, "Sink &lt;1&gt;") {
		t.Error("escaped label missing")
	}
}

func TestRenderSVGLabelFallsBackToID(t *testing.T) {
	c := scene.New()
	scene.LoadNode(c, "unnamed", scene.NodeData{})
	svg := string(RenderSVG(c))
	if !strings.Contains(svg, ">unnamed</text>") {
		t.Errorf("expected id as label, got:\n%s", svg)
	}
}

func TestRenderSVGCamera(t *testing.T) {
	c := testScene()
	scene.SetCamera(c, geom.Mat23{2, 0, 0, 2, 10, 20})

	svg := string(RenderSVG(c, WithViewport(800, 600)))
	if !strings.Contains(svg, `width="800" height="600"`) {
		t.Error("viewport size not applied")
	}
	if !strings.Contains(svg, `transform="matrix(2 0 0 2 10 20)"`) {
		t.Errorf("camera transform missing:\n%s", svg)
	}
}

func TestRenderSVGFitsScene(t *testing.T) {
	c := scene.New()
	scene.LoadNode(c, "a", scene.NodeData{Position: geom.V(100, 100)})

	svg := string(RenderSVG(c, WithPadding(10)))
	size := scene.NodeSize(0)
	want := `width="` + num(size.X()+20) + `" height="` + num(size.Y()+20) + `"`
	if !strings.Contains(svg, want) {
		t.Errorf("expected fitted canvas %s in:\n%s", want, svg)
	}
	if !strings.Contains(svg, `transform="matrix(1 0 0 1 -90 -90)"`) {
		t.Errorf("expected fit translation in:\n%s", svg)
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	svg := string(RenderSVG(scene.New()))
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Errorf("malformed document:\n%s", svg)
	}
	if strings.Contains(svg, `class="node"`) {
		t.Error("empty scene should paint no nodes")
	}
}

func TestRenderSVGHighlight(t *testing.T) {
	svg := string(RenderSVG(testScene(), WithHighlight("b")))
	if !strings.Contains(svg, `<g class="node highlight" id="node-b">`) {
		t.Error("highlighted node should carry the highlight class")
	}
	if strings.Count(svg, "node highlight") != 1 {
		t.Error("only one node should be highlighted")
	}
}

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{12, "12"},
		{-90, "-90"},
		{1.5, "1.50"},
		{0.126, "0.13"},
	}
	for _, tt := range tests {
		if got := num(tt.in); got != tt.want {
			t.Errorf("num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
