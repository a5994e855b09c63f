package audit

import (
	"reflect"
	"testing"
)

func TestReconcile(t *testing.T) {
	targets := ids("A", "B", "C", "D")
	tests := []struct {
		name      string
		submitted []string
		want      []string
	}{
		{name: "nobody submitted", submitted: nil, want: []string{"A", "B", "C", "D"}},
		{name: "everyone submitted", submitted: []string{"D", "C", "B", "A"}, want: []string{}},
		{name: "order preserved", submitted: []string{"D", "B"}, want: []string{"A", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identitiesToStrings(Reconcile(targets, set(tt.submitted...)))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Reconcile = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReconcileIgnoresOutsiders(t *testing.T) {
	targets := ids("A", "B", "C")
	submitted := set("B")
	withOutsiders := set("B", "X", "Y")

	plain := Reconcile(targets, submitted)
	extra := Reconcile(targets, withOutsiders)
	if !reflect.DeepEqual(plain, extra) {
		t.Fatalf("посторонние идентификаторы не должны влиять: %v vs %v", plain, extra)
	}
}

func TestReconcileSelfIsEmpty(t *testing.T) {
	targets := ids("A", "B")
	got := Reconcile(targets, set("A", "B"))
	if got == nil || len(got) != 0 {
		t.Fatalf("ожидали пустой не-nil список, получили %#v", got)
	}
}
