// Package broadcast provides a generic fan-out helper component: it
// takes a slice-shaped value and republishes it whole on its primary
// output while also emitting each element individually on a Multiple
// channel, turning any producer of a slice into a fan-out source. This
// is the "broadcast" component named throughout spec §8's scenarios.
package broadcast

import (
	"fmt"

	"github.com/frc4121/vvpipeline/internal/component"
	"github.com/frc4121/vvpipeline/internal/value"
)

// ElemChannel is the Multiple-kind output channel each element of the
// seeded slice is emitted on.
const ElemChannel = "elem"

// Of builds a Component that, given a []T on its Primary input, submits
// the slice unchanged on the primary channel and each element in order
// on ElemChannel.
func Of[T any]() component.Component {
	return component.Func{
		InputsFn: component.Primary,
		OutputKindFn: func(channel string) component.Kind {
			switch channel {
			case component.PrimaryChannel:
				return component.KindSingle
			case ElemChannel:
				return component.KindMultiple
			default:
				return component.KindNone
			}
		},
		RunFn: func(ctx *component.Context) error {
			items, err := component.GetTyped[[]T](ctx, component.PrimaryChannel)
			if err != nil {
				return fmt.Errorf("broadcast: %w", err)
			}
			ctx.Submit(component.PrimaryChannel, value.Of(items))
			for _, item := range items {
				ctx.Submit(ElemChannel, value.Of(item))
			}
			return nil
		},
	}
}
