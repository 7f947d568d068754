package hackmd_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-hackmd"
)

// Example renders inline extensions for printing.
func Example() {
	r := hackmd.New(hackmd.WithRemote(nil))

	out, err := r.RenderExport(context.Background(), "Remember ==this== and H~2~O.\n")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Print(out)
	// Output: Remember <mark>this</mark> and H<sub>2</sub>O.
}

// Example_interactive shows the scroll markers added for the editor view.
func Example_interactive() {
	r := hackmd.New(hackmd.WithRemote(nil))

	out, err := r.RenderInteractive(context.Background(), "# Notes\n\nHello\n")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Print(out)
	// Output:
	// # <span class="codoc-mdline" data-line="1"></span>Notes
	//
	// Hello
	//
	// <span data-codoc-tail></span>
}

// Example_customBlock binds a fence language to a custom renderer.
func Example_customBlock() {
	r := hackmd.New(
		hackmd.WithRemote(nil),
		hackmd.WithFencedBlockProvider("shout", hackmd.FencedBlockFunc(func(_, code string) (string, bool) {
			return "<p>" + strings.ToUpper(code) + "</p>\n", true
		})),
	)

	out, err := r.RenderExport(context.Background(), "```shout\nhello\n```\n")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Print(out)
	// Output: <p>HELLO</p>
}
