// Package hackmd expands HackMD/CodiMD Markdown extensions into HTML
// fragments, leaving a document any CommonMark renderer can finish.
//
// # Quick Start
//
// Create a renderer once and share it; it is safe for concurrent use:
//
//	r := hackmd.New(hackmd.WithBaseURL("https://codoc.example"))
//
//	out, err := r.RenderInteractive(ctx, "# Notes\n\n:::info\nhi\n:::\n")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Pipeline
//
// Render runs these passes in order. Each pass leaves fenced code and
// inline code spans untouched:
//
//  1. \( \) and \[ \] math delimiters become $ and $$
//  2. scroll markers on headings and every few paragraphs (interactive only)
//  3. code fence info strings are normalized (=, !, line numbers)
//  4. a [TOC] line becomes a nested list of heading links
//  5. smart quotes, dashes and ellipses
//  6. ==mark==, ++ins++, ^sup^ and ~sub~
//  7. Font Awesome icon classes
//  8. :emoji: shortcodes
//  9. ![alt](src =WxH) image sizes
//  10. {% name args %} embeds, then diagram fences (mermaid, graphviz, ...)
//  11. :::info / :::spoiler admonitions
//  12. > [name=...] [time=...] [color=...] quote blocks
//  13. syntax highlighting of the remaining fences
//
// # Remote Lookups
//
// SlideShare, SpeakerDeck and Gist embeds can fetch metadata. The built-in
// client caches results (WithCache) and bounds each request
// (WithFetchTimeout). A failed lookup never fails the render: the embed
// falls back to a plain iframe or link. Pass WithRemote(nil) to render
// fully offline.
//
// # Extending
//
// WithEmbedProvider adds or replaces a {% name %} directive and
// WithFencedBlockProvider binds a fence language to a renderer.
package hackmd
