package proxy

import (
	"strings"

	"github.com/alnah/go-hackmd/internal/htmlutil"
)

// Page wraps body in the minimal document served to embed iframes.
func Page(body string) string {
	return "<!doctype html><html><head><meta charset='utf-8'/>" +
		"<meta name='viewport' content='width=device-width, initial-scale=1'/>" +
		"<style>body{margin:0;padding:0;font-family:sans-serif}</style>" +
		"</head><body>" + body + "</body></html>"
}

// Message returns a page showing text in a <pre>.
func Message(text string) string {
	return Page("<pre>" + text + "</pre>")
}

// GistPage loads a gist script URL. Anything but https is refused.
func GistPage(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || !strings.HasPrefix(strings.ToLower(rawURL), "https://") {
		return Message("Invalid gist URL")
	}
	return Page("<style>body{margin:0;padding:0} .gist{font-size:12px}</style>" +
		"<script src='" + htmlutil.EscapeAttr(rawURL) + "'></script>")
}

const (
	sourceOpen  = "<pre id='source' style='display:none'>"
	sourceClose = "</pre>"
	svgFit      = "<style>#diagram svg{max-width:100%;height:auto}</style>"
	showSource  = "var pre=document.createElement('pre');pre.textContent=text;document.body.appendChild(pre);"
)

// diagramBodies build the page body for each diagram kind from the escaped
// source block.
var diagramBodies = map[string]func(source string) string{
	"sequence": func(source string) string {
		return "<div id='diagram'></div>" + source +
			"<script src='https://bramp.github.io/js-sequence-diagrams/js/webfont.js'></script>" +
			"<script src='https://bramp.github.io/js-sequence-diagrams/js/snap.svg-min.js'></script>" +
			"<script src='https://bramp.github.io/js-sequence-diagrams/js/underscore-min.js'></script>" +
			"<script src='https://bramp.github.io/js-sequence-diagrams/js/sequence-diagram-min.js'></script>" +
			"<script>(function(){try{var text=document.getElementById('source').textContent;" +
			"var d=Diagram.parse(text);d.drawSVG('diagram',{theme:'simple'});}catch(e){" +
			showSource + "}})();</script>"
	},
	"flow": func(source string) string {
		return svgFit + "<div id='diagram'></div>" + source +
			"<script src='https://cdnjs.cloudflare.com/ajax/libs/raphael/2.3.0/raphael.min.js'></script>" +
			"<script src='https://cdnjs.cloudflare.com/ajax/libs/flowchart/1.17.1/flowchart.min.js'></script>" +
			"<script>(function(){var text=document.getElementById('source').textContent;" +
			"try{var diagram=flowchart.parse(text);diagram.drawSVG('diagram');}" +
			"catch(e){" + showSource + "}})();</script>"
	},
	"graphviz": func(source string) string {
		return svgFit + "<div id='diagram'></div>" + source +
			"<script src='https://cdn.jsdelivr.net/npm/viz.js@2.1.2/viz.js'></script>" +
			"<script src='https://cdn.jsdelivr.net/npm/viz.js@2.1.2/full.render.js'></script>" +
			"<script>(function(){var text=document.getElementById('source').textContent;" +
			"var container=document.getElementById('diagram');" +
			"try{var viz=new Viz();viz.renderSVGElement(text).then(function(el){container.appendChild(el);})" +
			".catch(function(){" + showSource + "});}" +
			"catch(e){" + showSource + "}})();</script>"
	},
	"mermaid": func(source string) string {
		return svgFit + "<div id='diagram' class='mermaid'></div>" + source +
			"<script src='https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js'></script>" +
			"<script>(function(){var el=document.getElementById('diagram');" +
			"el.textContent=document.getElementById('source').textContent;" +
			"try{mermaid.initialize({startOnLoad:false});mermaid.init(undefined, el);}" +
			"catch(e){var pre=document.createElement('pre');pre.textContent=el.textContent;document.body.appendChild(pre);}})();</script>"
	},
	"abc": func(source string) string {
		return "<style>#paper svg{max-width:100%;height:auto}</style>" +
			"<div id='paper'></div>" + source +
			"<script src='https://cdn.jsdelivr.net/npm/abcjs@6.2.3/dist/abcjs-basic-min.js'></script>" +
			"<script>(function(){var text=document.getElementById('source').textContent;" +
			"try{ABCJS.renderAbc('paper', text, {responsive:'resize'});}" +
			"catch(e){" + showSource + "}})();</script>"
	},
	"vega": func(source string) string {
		return "<div id='vis'></div>" + source +
			"<script src='https://cdn.jsdelivr.net/npm/vega@5/build/vega.min.js'></script>" +
			"<script src='https://cdn.jsdelivr.net/npm/vega-lite@5/build/vega-lite.min.js'></script>" +
			"<script src='https://cdn.jsdelivr.net/npm/vega-embed@6/build/vega-embed.min.js'></script>" +
			"<script>(function(){var text=document.getElementById('source').textContent;" +
			"var target=document.getElementById('vis');var chart=null;" +
			"try{chart=JSON.parse(text);}catch(e){var pre=document.createElement('pre');pre.textContent='Invalid JSON';document.body.appendChild(pre);return;}" +
			"try{vegaEmbed(target, chart, {actions:false}).catch(function(){" + showSource + "});}" +
			"catch(e){" + showSource + "}})();</script>"
	},
}

// DiagramKinds lists the kinds DiagramPage serves.
var DiagramKinds = []string{"sequence", "flow", "graphviz", "mermaid", "abc", "vega"}

// DiagramPage returns the page that draws code as a diagram of kind.
// It reports false for an unknown kind.
func DiagramPage(kind, code string) (string, bool) {
	body, ok := diagramBodies[kind]
	if !ok {
		return "", false
	}
	if code == "" {
		return Message("(empty)"), true
	}
	return Page(body(sourceOpen + htmlutil.EscapeText(code) + sourceClose)), true
}
