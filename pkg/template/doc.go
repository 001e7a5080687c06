// Package template extracts reusable style templates from figures and
// composes them with prior templates.
//
// # Extraction
//
// [Make] walks every trace and the layout of a figure, asks a
// [schema.Schema] what each attribute path is, and copies only style leaves
// into a [Template]. Data payloads (data_array attributes and arrayOk
// attributes holding per-point arrays) never reach the template. Traces are
// bucketed by resolved trace type:
//
//	{
//	  "data":   {"scatter": [{"mode": "markers", "marker": {"color": "red"}}]},
//	  "layout": {"title": {"text": "Hi"}, "font": {"size": 12}}
//	}
//
// Repeated layout items such as annotations are captured once per distinct
// "name" plus a single default item (stored under "annotationdefaults")
// taken from the first unnamed item.
//
// # Composition
//
// If the figure's layout already carries a template, the freshly extracted
// one is merged with it: new values win, the prior template fills gaps.
// Sequences of objects are reconciled item by item, first by "name" and
// otherwise by position with wraparound, so a short prior template is
// reused cyclically over a longer live array. [Merge] exposes the same
// composition for arbitrary template objects.
//
// Both steps are deterministic and never fail. The output never shares
// mutable structure with the inputs.
package template
