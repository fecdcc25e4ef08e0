package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/internal/errors"
	"github.com/redscorpix/npf-sub003/pkg/dom"
	"github.com/redscorpix/npf-sub003/pkg/incdom"
	"github.com/redscorpix/npf-sub003/pkg/protocol"
	"github.com/redscorpix/npf-sub003/pkg/vdom"
)

type patchOptions struct {
	base         string
	tree         string
	container    string
	selectExpr   string
	frames       bool
	noAssertions bool
	verbose      bool
}

func patchCmd() *cobra.Command {
	var opts patchOptions

	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Patch HTML markup with a JSON tree",
		Long: `Parse the base markup into a container, patch it to match the JSON
tree description and print the resulting markup.

The tree is an element object, a text string, or an array of them:

  {"tag": "ul", "children": [
    {"tag": "li", "key": "a", "props": {"class": "item"}, "children": ["A"]}
  ]}

Examples:
  incdom patch --tree tree.json
  incdom patch --base page.html --tree tree.json --frames
  incdom patch --base page.html --tree - --select '//ul/li[1]' < tree.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.base, "base", "b", "", "Base markup file (default: empty container)")
	cmd.Flags().StringVarP(&opts.tree, "tree", "t", "", "JSON tree file, or - for stdin")
	cmd.Flags().StringVar(&opts.container, "container", "div", "Container element tag")
	cmd.Flags().StringVar(&opts.selectExpr, "select", "", "Print only the nodes matching this XPath")
	cmd.Flags().BoolVar(&opts.frames, "frames", false, "Print the mutations instead of the markup")
	cmd.Flags().BoolVar(&opts.noAssertions, "no-assertions", false, "Disable protocol checks")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log walker activity to stderr")

	return cmd
}

func runPatch(cmd *cobra.Command, opts patchOptions) error {
	treeJSON, err := readInput(cmd, "tree", opts.tree)
	if err != nil {
		return err
	}
	tree, err := vdom.Decode(treeJSON)
	if err != nil {
		return err
	}

	container := dom.NewContainer(opts.container)
	if opts.base != "" {
		base, err := readInput(cmd, "base", opts.base)
		if err != nil {
			return err
		}
		if err := dom.ParseInto(container, string(base)); err != nil {
			return err
		}
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	recorder := protocol.NewRecorder(container)
	p := incdom.New(
		incdom.WithLogger(logger),
		incdom.WithAssertions(!opts.noAssertions),
		incdom.WithObserver(recorder),
	)
	if err := p.PatchInner(container, vdom.Patch(tree)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.frames {
		return printFrame(out, recorder.Flush(1))
	}
	if opts.selectExpr != "" {
		return printSelection(out, container, opts.selectExpr)
	}
	markup, err := dom.InnerHTML(container)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, markup)
	return nil
}

func printFrame(w io.Writer, f *protocol.MutationsFrame) error {
	for _, m := range f.Mutations {
		if _, err := fmt.Fprintln(w, m); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d mutations, %d bytes encoded\n", len(f.Mutations), protocol.EncodedSize(f))
	return err
}

func printSelection(w io.Writer, container *html.Node, expr string) error {
	nodes, err := dom.QueryAll(container, expr)
	if err != nil {
		return errors.New("E140").WithDetail(err.Error())
	}
	for _, n := range nodes {
		markup, err := dom.OuterHTML(n)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, markup)
	}
	return nil
}
