package reconcile

import (
	"fmt"

	"github.com/dshills/squall/internal/dom"
)

// Apply mutates the live tree by applying patches in order. Application
// stops at the first failing patch; earlier patches stay applied.
func Apply(patches []Patch) error {
	for i := range patches {
		if err := applyPatch(&patches[i]); err != nil {
			return fmt.Errorf("apply %s: %w", patches[i].Op, err)
		}
	}
	return nil
}

// Apply mutates the live tree by applying patches in order.
func (r *Reconciler) Apply(patches []Patch) error {
	return Apply(patches)
}

func applyPatch(p *Patch) error {
	switch p.Op {
	case OpAdd:
		if p.Parent == nil {
			return ErrNilParent
		}
		n, err := dom.Build(p.Node)
		if err != nil {
			return err
		}
		p.Parent.InsertChildAt(p.Index, n)

	case OpRemove:
		if p.Target == nil {
			return ErrNilTarget
		}
		p.Target.Detach()

	case OpReplace:
		if p.Target == nil {
			return ErrNilTarget
		}
		parent := p.Target.Parent()
		if parent == nil {
			return ErrDetachedTarget
		}
		n, err := dom.Build(p.Node)
		if err != nil {
			return err
		}
		idx := parent.ChildIndex(p.Target)
		p.Target.Detach()
		parent.InsertChildAt(idx, n)

	case OpUpdateAttrs:
		if p.Target == nil {
			return ErrNilTarget
		}
		for _, a := range p.Attrs.Set {
			p.Target.SetAttr(a.Name, a.Value)
		}
		for _, name := range p.Attrs.Remove {
			p.Target.RemoveAttr(name)
		}

	case OpUpdateText:
		if p.Target == nil {
			return ErrNilTarget
		}
		p.Target.SetText(p.Text)

	case OpMove:
		if p.Target == nil {
			return ErrNilTarget
		}
		parent := p.Target.Parent()
		if parent == nil {
			return ErrDetachedTarget
		}
		parent.RemoveChildAt(parent.ChildIndex(p.Target))
		parent.InsertChildAt(p.Index, p.Target)

	default:
		return fmt.Errorf("%w: %d", ErrUnknownOp, int(p.Op))
	}
	return nil
}
