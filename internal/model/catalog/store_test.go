package catalog

import "testing"

func TestSeedMarksFirstModelDefault(t *testing.T) {
	store := NewMemoryStore(Seed())

	def, ok := store.Default()
	if !ok {
		t.Fatal("expected a default model")
	}
	if def.ID != "gemini-2.0-flash" {
		t.Fatalf("unexpected default model: %s", def.ID)
	}
	if def.Name != "Gemini 2.0 Flash" {
		t.Fatalf("unexpected display name: %s", def.Name)
	}
}

func TestFromIDsSkipsBlankAndDuplicates(t *testing.T) {
	models := FromIDs([]string{" model-a ", "", "model-b", "model-a"}, "model-b")
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].Default {
		t.Fatal("model-a should not be default")
	}
	if !models[1].Default {
		t.Fatal("model-b should be default")
	}
}

func TestFromIDsAddsMissingDefault(t *testing.T) {
	models := FromIDs([]string{"model-a"}, "model-z")
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].ID != "model-z" || !models[0].Default {
		t.Fatalf("expected model-z first and default, got %+v", models[0])
	}
}

func TestFindByIDMissing(t *testing.T) {
	store := NewMemoryStore(Seed())
	if _, ok := store.FindByID("missing"); ok {
		t.Fatal("expected missing model lookup to fail")
	}
}

func TestEmptyStoreHasNoDefault(t *testing.T) {
	store := NewMemoryStore(nil)
	if _, ok := store.Default(); ok {
		t.Fatal("expected no default in empty store")
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve(nil, ""); len(got) != len(Seed()) {
		t.Fatalf("expected seed models, got %v", got)
	}

	only := Resolve(nil, "doubao-pro")
	if len(only) != 1 || only[0].ID != "doubao-pro" || !only[0].Default {
		t.Fatalf("unexpected single model catalog: %+v", only)
	}

	listed := Resolve([]string{"a", "b"}, "")
	if len(listed) != 2 || !listed[0].Default {
		t.Fatalf("unexpected listed catalog: %+v", listed)
	}
}
