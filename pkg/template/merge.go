package template

import (
	"github.com/matzehuels/figstyle/pkg/figure"
	"github.com/matzehuels/figstyle/pkg/schema"
)

// Merge fills target with values from old that target does not already
// have. Values present in both are merged recursively when both are
// objects and reconciled item by item when both are sequences of objects;
// in every other case the target value wins, even when it looks empty.
//
// old is never modified and target never shares structure with it.
// Keys of old are processed in lexicographic order.
//
// A key of old without a numeric suffix, such as "xaxis", is also merged
// into every suffixed variant of target ("xaxis2", "xaxis3") that old does
// not declare itself.
func Merge(old, target *figure.Object) {
	if old == nil || target == nil {
		return
	}
	mergeObjects(old.Clone(), target)
}

func mergeObjects(old, target *figure.Object) {
	for _, key := range old.SortedKeys() {
		oldVal, _ := old.Get(key)
		if cur, ok := target.Get(key); ok {
			target.Set(key, mergeValue(oldVal, cur))
		} else {
			target.Set(key, figure.Clone(oldVal))
		}

		if schema.BaseKey(key) != key {
			continue
		}
		for _, key2 := range target.Keys() {
			if key2 == key || schema.BaseKey(key2) != key || old.Has(key2) {
				continue
			}
			cur, _ := target.Get(key2)
			target.Set(key2, mergeValue(oldVal, cur))
		}
	}
}

// mergeValue merges old into cur and returns the resulting value.
func mergeValue(old, cur any) any {
	switch figure.KindOf(cur) {
	case figure.KindObject:
		if o, ok := figure.AsObject(old); ok {
			mergeObjects(o, cur.(*figure.Object))
		}
	case figure.KindSequence:
		o, ok := figure.AsSequence(old)
		if ok && reconcilable(o) && reconcilable(cur.([]any)) {
			return reconcile(o, cur.([]any))
		}
	}
	return cur
}
