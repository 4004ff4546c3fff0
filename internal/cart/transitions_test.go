package cart

import (
	"math/rand"
	"reflect"
	"testing"
)

var (
	sauvage = Product{ProductID: "p1", Name: "Dior Sauvage", UnitPrice: 8500, Image: "/img/sauvage.jpg", Slug: "dior-sauvage"}
	bleu    = Product{ProductID: "p2", Name: "Bleu de Chanel", UnitPrice: 12000, Slug: "bleu-de-chanel"}
)

func TestReduceScenarios(t *testing.T) {
	t.Run("add to empty cart", func(t *testing.T) {
		snap := Summarize(Reduce(nil, AddItem{Product: sauvage}))
		if len(snap.Items) != 1 || snap.Items[0].Quantity != 1 {
			t.Fatalf("expected one item with quantity 1, got %+v", snap.Items)
		}
		if snap.Total != 8500 || snap.ItemCount != 1 {
			t.Fatalf("unexpected aggregates total=%d count=%d", snap.Total, snap.ItemCount)
		}
		if snap.Items[0].Name != "Dior Sauvage" || snap.Items[0].Slug != "dior-sauvage" {
			t.Fatalf("display data not copied: %+v", snap.Items[0])
		}
	})

	t.Run("adding same product increments", func(t *testing.T) {
		items := Reduce(nil, AddItem{Product: sauvage})
		items = Reduce(items, AddItem{Product: sauvage})
		snap := Summarize(items)
		if len(snap.Items) != 1 || snap.Items[0].Quantity != 2 {
			t.Fatalf("expected a single item with quantity 2, got %+v", snap.Items)
		}
		if snap.Total != 17000 || snap.ItemCount != 2 {
			t.Fatalf("unexpected aggregates total=%d count=%d", snap.Total, snap.ItemCount)
		}
	})

	t.Run("zero quantity removes", func(t *testing.T) {
		items := Reduce(nil, AddItem{Product: sauvage})
		items = Reduce(items, SetQuantity{ProductID: "p1", Quantity: 0})
		snap := Summarize(items)
		if len(snap.Items) != 0 || snap.Total != 0 || snap.ItemCount != 0 {
			t.Fatalf("expected empty cart, got %+v", snap)
		}
	})

	t.Run("remove keeps other items", func(t *testing.T) {
		items := Reduce(nil, AddItem{Product: sauvage})
		items = Reduce(items, AddItem{Product: bleu})
		items = Reduce(items, RemoveItem{ProductID: "p1"})
		snap := Summarize(items)
		if len(snap.Items) != 1 || snap.Items[0].ProductID != "p2" {
			t.Fatalf("expected only p2, got %+v", snap.Items)
		}
		if snap.Total != 12000 || snap.ItemCount != 1 {
			t.Fatalf("unexpected aggregates total=%d count=%d", snap.Total, snap.ItemCount)
		}
	})
}

func TestReduceNoOps(t *testing.T) {
	items := Reduce(nil, AddItem{Product: sauvage})

	if got := Reduce(items, RemoveItem{ProductID: "missing"}); !reflect.DeepEqual(got, items) {
		t.Fatalf("remove of absent id changed items: %+v", got)
	}
	if got := Reduce(items, SetQuantity{ProductID: "missing", Quantity: 4}); !reflect.DeepEqual(got, items) {
		t.Fatalf("update of absent id changed items: %+v", got)
	}
	if got := Reduce(items, AddItem{Product: Product{Name: "no id"}}); !reflect.DeepEqual(got, items) {
		t.Fatalf("add without product id changed items: %+v", got)
	}
	if got := Reduce(items, SetQuantity{ProductID: "p1", Quantity: -3}); len(got) != 0 {
		t.Fatalf("negative quantity should remove, got %+v", got)
	}
}

func TestReduceDoesNotAliasInput(t *testing.T) {
	items := Reduce(nil, AddItem{Product: sauvage})
	before := append([]LineItem(nil), items...)

	_ = Reduce(items, AddItem{Product: sauvage})
	_ = Reduce(items, SetQuantity{ProductID: "p1", Quantity: 9})
	_ = Reduce(items, ClearItems{})

	if !reflect.DeepEqual(items, before) {
		t.Fatalf("input items mutated: %+v", items)
	}
}

func TestReduceInvariantsHoldForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []Product{
		sauvage,
		bleu,
		{ProductID: "p3", Name: "Lancome Idole", UnitPrice: 9900},
		{ProductID: "p4", Name: "YSL Libre", UnitPrice: 15500},
	}

	var items []LineItem
	for i := 0; i < 2000; i++ {
		p := products[rng.Intn(len(products))]
		var action Action
		switch rng.Intn(5) {
		case 0, 1:
			action = AddItem{Product: p}
		case 2:
			action = RemoveItem{ProductID: p.ProductID}
		case 3:
			action = SetQuantity{ProductID: p.ProductID, Quantity: rng.Intn(6) - 1}
		default:
			if rng.Intn(10) == 0 {
				action = ClearItems{}
			} else {
				action = AddItem{Product: p}
			}
		}
		items = Reduce(items, action)
		assertInvariants(t, Summarize(items))
	}
}

func assertInvariants(t *testing.T, snap Snapshot) {
	t.Helper()

	var total int64
	var count int
	seen := map[string]bool{}
	for _, item := range snap.Items {
		if item.Quantity < 1 {
			t.Fatalf("item %s has quantity %d", item.ProductID, item.Quantity)
		}
		if seen[item.ProductID] {
			t.Fatalf("duplicate product id %s", item.ProductID)
		}
		seen[item.ProductID] = true
		total += item.UnitPrice * int64(item.Quantity)
		count += item.Quantity
	}
	if snap.Total != total {
		t.Fatalf("total %d != derived %d", snap.Total, total)
	}
	if snap.ItemCount != count {
		t.Fatalf("itemCount %d != derived %d", snap.ItemCount, count)
	}
}
