package main

import (
	"fmt"
	"io"

	"github.com/frc4121/vvpipeline/internal/component"
	"github.com/frc4121/vvpipeline/internal/value"
)

// newPrintComponent builds a Primary-input, no-output component that
// writes every value it receives to w.
func newPrintComponent(w io.Writer) component.Component {
	return component.Func{
		InputsFn:     component.Primary,
		OutputKindFn: func(string) component.Kind { return component.KindNone },
		RunFn: func(ctx *component.Context) error {
			v, err := ctx.GetAs(component.PrimaryChannel)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "[%s] ", ctx.RunID())
			v.WriteDebug(w)
			fmt.Fprintln(w)
			return nil
		},
	}
}

// newCheckContainsComponent builds a Named(vec, elem) component that
// emits, on its primary Single output, whether elem appears in vec.
func newCheckContainsComponent() component.Component {
	return component.Func{
		InputsFn: func() component.Inputs { return component.Named("vec", "elem") },
		OutputKindFn: func(channel string) component.Kind {
			if channel == component.PrimaryChannel {
				return component.KindSingle
			}
			return component.KindNone
		},
		RunFn: func(ctx *component.Context) error {
			vec, err := component.GetTyped[[]int](ctx, "vec")
			if err != nil {
				return err
			}
			elem, err := component.GetTyped[int](ctx, "elem")
			if err != nil {
				return err
			}
			found := false
			for _, v := range vec {
				if v == elem {
					found = true
					break
				}
			}
			ctx.Submit(component.PrimaryChannel, value.Of(found))
			return nil
		},
	}
}
