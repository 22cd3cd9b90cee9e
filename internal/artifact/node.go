package artifact

import (
	"context"
	"fmt"
	"strings"
)

// Kind identifies the class of artifact a node produces. The command builder
// and dependency wiring for every kind live in build.go; adding a kind means
// extending the exhaustive switches there and in String.
type Kind int

const (
	// KindRender renders the training text into a ground-truth image/box
	// pair for one font and exposure.
	KindRender Kind = iota
	// KindUnicharset extracts the character set from all box files.
	KindUnicharset
	// KindCharsetProps annotates the unicharset with script properties and
	// x-heights.
	KindCharsetProps
	// KindFeatures extracts LSTM feature files from one rendered image.
	KindFeatures
	// KindTrainingList writes the list of feature files consumed by the
	// trainer. Produced in-process, not by an external tool.
	KindTrainingList
	// KindTrainedData combines the language model into the final starter
	// traineddata.
	KindTrainedData
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindUnicharset:
		return "unicharset"
	case KindCharsetProps:
		return "charset_props"
	case KindFeatures:
		return "features"
	case KindTrainingList:
		return "training_list"
	case KindTrainedData:
		return "traineddata"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Command is one external tool invocation: the resolved binary path, its
// arguments, and any extra environment entries appended to the host
// environment.
type Command struct {
	Tool string
	Args []string
	Env  []string
}

// String renders the command line for logs and reports.
func (c Command) String() string {
	if c.Tool == "" {
		return ""
	}
	return c.Tool + " " + strings.Join(c.Args, " ")
}

// BuiltinFunc produces a node's outputs in-process instead of spawning an
// external tool. It must create every declared output on success.
type BuiltinFunc func(ctx context.Context) error

// Node is one file-producing step of the pipeline. Nodes are immutable after
// graph construction.
type Node struct {
	// Name is the unique logical identity of the node, e.g.
	// "render.Roboto.exp0". Dependencies reference it, and output file
	// names derive from it, so staleness detection is stable across runs.
	Name string

	Kind Kind

	// Outputs are the files this node must produce. Every node owns a
	// unique output set, so concurrent siblings never write the same file.
	Outputs []string

	// Inputs are source files consumed directly from disk rather than
	// produced by an upstream node (training text, base traineddata, ...).
	Inputs []string

	// Deps are the names of upstream nodes whose outputs this node reads.
	Deps []string

	// Command produces the outputs, unless Builtin is set.
	Command Command

	// Builtin, when non-nil, replaces Command for in-process steps.
	Builtin BuiltinFunc
}

// IsBuiltin reports whether the node is produced in-process.
func (n *Node) IsBuiltin() bool {
	return n.Builtin != nil
}
