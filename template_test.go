/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memstore_test

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/suparena/memstore"
	"github.com/suparena/memstore/datastore"
	"github.com/suparena/memstore/datastore/memory"
	"github.com/suparena/memstore/datastore/mock"
	"github.com/suparena/memstore/datastore/testmodels"
	"github.com/suparena/memstore/errors"
	"github.com/suparena/memstore/query"
	"github.com/suparena/memstore/registry"
)

func newTemplate(t *testing.T, opts ...memstore.Option) *memstore.Template {
	t.Helper()
	reg := testmodels.NewRegistry()
	return memstore.New(memory.New(reg), reg, opts...)
}

func seedPeople(t *testing.T, tmpl *memstore.Template) {
	t.Helper()
	ctx := context.Background()
	for _, p := range testmodels.People() {
		require.NoError(t, tmpl.CreateWithID(ctx, p.ID, p))
	}
}

func ids(people []testmodels.Person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.ID
	}
	return out
}

func TestReadRange(t *testing.T) {
	ctx := context.Background()
	tmpl := newTemplate(t)
	seedPeople(t, tmpl)

	tests := []struct {
		name   string
		offset int
		rows   int
		want   []string
	}{
		{"last two", 3, 10, []string{"p4", "p5"}},
		{"offset past end", 10, 5, []string{}},
		{"offset at end", 5, 1, []string{}},
		{"first page", 0, 2, []string{"p1", "p2"}},
		{"middle", 1, 3, []string{"p2", "p3", "p4"}},
		{"zero rows", 2, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			people, err := memstore.ReadRange[testmodels.Person](ctx, tmpl, tt.offset, tt.rows)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(people))
		})
	}

	t.Run("negative", func(t *testing.T) {
		_, err := memstore.ReadRange[testmodels.Person](ctx, tmpl, -1, 2)
		assert.True(t, errors.IsValidationError(err))
		_, err = memstore.ReadRange[testmodels.Person](ctx, tmpl, 0, -2)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestReadRangeIsContiguousSubsequence(t *testing.T) {
	ctx := context.Background()
	tmpl := newTemplate(t)
	seedPeople(t, tmpl)

	all, err := memstore.ReadAll[testmodels.Person](ctx, tmpl)
	require.NoError(t, err)

	for offset := 0; offset <= len(all)+1; offset++ {
		for rows := 0; rows <= len(all)+1; rows++ {
			page, err := memstore.ReadRange[testmodels.Person](ctx, tmpl, offset, rows)
			require.NoError(t, err)

			want := min(rows, max(0, len(all)-offset))
			require.Len(t, page, want, "offset=%d rows=%d", offset, rows)
			if want > 0 {
				assert.Equal(t, all[offset:offset+want], page)
			}
		}
	}
}

func TestReadSorted(t *testing.T) {
	ctx := context.Background()
	tmpl := newTemplate(t)
	seedPeople(t, tmpl)

	people, err := memstore.ReadSorted[testmodels.Person](ctx, tmpl, query.SortBy(query.Descending("age")))
	require.NoError(t, err)
	assert.Equal(t, []string{"p5", "p2", "p3", "p1", "p4"}, ids(people))

	people, err = memstore.ReadSorted[testmodels.Person](ctx, tmpl, query.By("name"))
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3", "p4", "p5", "p2"}, ids(people))
}

func TestReadRangeSorted(t *testing.T) {
	ctx := context.Background()
	tmpl := newTemplate(t)
	seedPeople(t, tmpl)

	byAge := query.SortBy(query.Descending("age"))

	people, err := memstore.ReadRangeSorted[testmodels.Person](ctx, tmpl, 1, 2, byAge)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3"}, ids(people))

	people, err = memstore.ReadRangeSorted[testmodels.Person](ctx, tmpl, 4, 10, byAge)
	require.NoError(t, err)
	assert.Equal(t, []string{"p4"}, ids(people))

	people, err = memstore.ReadRangeSorted[testmodels.Person](ctx, tmpl, 2, 0, byAge)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p1", "p4"}, ids(people), "zero rows reads to the end")

	people, err = memstore.ReadRangeSorted[testmodels.Person](ctx, tmpl, 9, 2, byAge)
	require.NoError(t, err)
	assert.Empty(t, people)

	_, err = memstore.ReadRangeSorted[testmodels.Person](ctx, tmpl, -1, 2, byAge)
	assert.True(t, errors.IsValidationError(err))
}

func TestReadQuery(t *testing.T) {
	ctx := context.Background()
	tmpl := newTemplate(t)
	seedPeople(t, tmpl)

	q := query.New(query.Gt("age", 40)).OrderBy(query.By("age"))
	people, err := memstore.Read[testmodels.Person](ctx, tmpl, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p2", "p5"}, ids(people))

	n, err := memstore.CountQuery[testmodels.Person](ctx, tmpl, q)
	require.NoError(t, err)
	assert.Equal(t, int64(len(people)), n)

	people, err = memstore.Read[testmodels.Person](ctx, tmpl, q.Skip(1).Limit(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids(people))

	people, err = memstore.Read[testmodels.Person](ctx, tmpl, query.New(query.AnyOf(
		query.ILike("name", "a*"),
		query.NotNull("email"),
	)))
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(people))

	_, err = memstore.Read[testmodels.Person](ctx, tmpl, query.New(query.Eq("shoeSize", 42)))
	assert.True(t, errors.IsTranslationError(err), "got %v", err)

	_, err = memstore.Read[testmodels.Person](ctx, tmpl, query.All().OrderBy(query.By("shoeSize")))
	assert.True(t, errors.IsTranslationError(err), "got %v", err)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	tmpl := newTemplate(t)

	n, err := memstore.Count[testmodels.Person](ctx, tmpl)
	require.NoError(t, err)
	assert.Zero(t, n)

	seedPeople(t, tmpl)
	all, err := memstore.ReadAll[testmodels.Person](ctx, tmpl)
	require.NoError(t, err)
	n, err = memstore.Count[testmodels.Person](ctx, tmpl)
	require.NoError(t, err)
	assert.Equal(t, int64(len(all)), n)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	tmpl := newTemplate(t)

	t.Run("generated id", func(t *testing.T) {
		created, err := memstore.Create(ctx, tmpl, testmodels.Person{Name: "Niklaus", Age: 89})
		require.NoError(t, err)
		_, err = uuid.Parse(created.ID)
		require.NoError(t, err)

		stored, found, err := memstore.ReadByID[testmodels.Person](ctx, tmpl, created.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, created, stored)
	})

	t.Run("existing id", func(t *testing.T) {
		p := testmodels.Person{ID: "dup", Name: "First"}
		_, err := memstore.Create(ctx, tmpl, p)
		require.NoError(t, err)

		err = tmpl.CreateWithID(ctx, "dup", testmodels.Person{ID: "dup", Name: "Second"})
		assert.True(t, errors.IsAlreadyExists(err))

		stored, _, err := memstore.ReadByID[testmodels.Person](ctx, tmpl, "dup")
		require.NoError(t, err)
		assert.Equal(t, "First", stored.Name)
	})

	t.Run("no id setter", func(t *testing.T) {
		type note struct{ Text string }
		reg := registry.NewTypeRegistry()
		registry.MustRegister(reg, registry.Descriptor[note]{Alias: "notes"})
		tmpl := memstore.New(memory.New(reg), reg)

		_, err := tmpl.Create(ctx, note{Text: "hello"})
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("unregistered type", func(t *testing.T) {
		type unknown struct{ ID string }
		_, err := tmpl.Create(ctx, unknown{ID: "x"})
		assert.True(t, errors.IsNotRegistered(err))
	})
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	tmpl := newTemplate(t)
	seedPeople(t, tmpl)

	require.NoError(t, tmpl.Update(ctx, testmodels.Person{ID: "p1", Name: "Ada", Age: 37}))
	require.NoError(t, tmpl.UpdateWithID(ctx, "p9", testmodels.Person{ID: "p9", Name: "Ken", Age: 81}))

	ada, found, err := memstore.ReadByID[testmodels.Person](ctx, tmpl, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 37, ada.Age)

	all, err := memstore.ReadAll[testmodels.Person](ctx, tmpl)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5", "p9"}, ids(all), "updates keep position")

	err = tmpl.Update(ctx, testmodels.Person{Name: "Anonymous"})
	assert.True(t, errors.IsValidationError(err))

	removed, found, err := tmpl.Delete(ctx, testmodels.Person{ID: "p9"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ken", removed.(testmodels.Person).Name)

	_, found, err = memstore.DeleteByID[testmodels.Person](ctx, tmpl, "p9")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = memstore.ReadByID[testmodels.Person](ctx, tmpl, "p9")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, memstore.DeleteAll[testmodels.Person](ctx, tmpl))
	n, err := memstore.Count[testmodels.Person](ctx, tmpl)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPolymorphicAlias(t *testing.T) {
	ctx := context.Background()
	tmpl := newTemplate(t)

	_, err := memstore.Create(ctx, tmpl, testmodels.Employee{ID: "e1", Name: "Eve", Salary: 120000})
	require.NoError(t, err)
	_, err = memstore.Create(ctx, tmpl, testmodels.Contractor{ID: "c1", Name: "Carl", HourlyRate: 40})
	require.NoError(t, err)

	staff, err := memstore.ReadSorted[testmodels.StaffMember](ctx, tmpl, query.SortBy(query.Ascending("salary")))
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "c1", staff[0].StaffID())
	assert.Equal(t, "e1", staff[1].StaffID())

	n, err := memstore.Count[testmodels.Employee](ctx, tmpl)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "the alias is shared")

	_, err = memstore.ReadAll[testmodels.Employee](ctx, tmpl)
	assert.True(t, errors.IsTypeMismatch(err), "got %v", err)

	_, _, err = memstore.ReadByID[testmodels.Employee](ctx, tmpl, "c1")
	var mismatch *errors.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "testmodels.Contractor", mismatch.Actual)

	employees, err := memstore.Read[testmodels.Employee](ctx, tmpl, query.New(query.Eq("id", "e1")))
	require.NoError(t, err)
	assert.Len(t, employees, 1)

	_, found, err := memstore.DeleteByID[testmodels.Employee](ctx, tmpl, "c1")
	assert.True(t, errors.IsTypeMismatch(err), "got %v", err)
	assert.False(t, found)
	contractor, found, err := memstore.ReadByID[testmodels.Contractor](ctx, tmpl, "c1")
	require.NoError(t, err)
	require.True(t, found, "a mismatched delete leaves the record in place")
	assert.Equal(t, "Carl", contractor.Name)

	removed, found, err := memstore.DeleteByID[testmodels.StaffMember](ctx, tmpl, "c1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "c1", removed.StaffID())
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	tmpl := newTemplate(t)
	seedPeople(t, tmpl)

	got, err := tmpl.Execute(ctx, func(ctx context.Context, adapter datastore.Adapter) (any, error) {
		cache, err := adapter.Cache(ctx, "people")
		if err != nil {
			return nil, err
		}
		return cache.Size(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	_, err = tmpl.Execute(ctx, nil)
	assert.True(t, errors.IsValidationError(err))

	assert.Equal(t, []string{"people", "staff"}, tmpl.Registry().Aliases())
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		tmpl := newTemplate(t, memstore.WithLogger(zap.New(core)))
		seedPeople(t, tmpl)

		require.NoError(t, tmpl.Destroy(ctx))
		require.NoError(t, tmpl.Destroy(ctx))

		n, err := memstore.Count[testmodels.Person](ctx, tmpl)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 2, logs.FilterMessage("Caches destroyed").Len())
	})

	t.Run("clear failure", func(t *testing.T) {
		reg := testmodels.NewRegistry()
		adapter := mock.New(reg)
		tmpl := memstore.New(adapter, reg)
		cause := stderrors.New("connection reset")
		adapter.WithClearError(cause)

		err := tmpl.Destroy(ctx)
		assert.True(t, errors.IsLifecycleError(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestErrorPropagation(t *testing.T) {
	ctx := context.Background()
	reg := testmodels.NewRegistry()
	adapter := mock.New(reg)
	tmpl := memstore.New(adapter, reg)
	seedPeople(t, tmpl)

	personType := reflect.TypeFor[testmodels.Person]()
	boom := stderrors.New("backend unavailable")

	adapter.WithQueryError(boom)
	_, err := tmpl.ReadAll(ctx, personType)
	assert.ErrorIs(t, err, boom)
	_, err = tmpl.ReadRange(ctx, 0, 2, personType)
	assert.ErrorIs(t, err, boom)
	_, err = tmpl.CountQuery(ctx, query.All(), personType)
	assert.ErrorIs(t, err, boom)
	adapter.WithQueryError(nil)

	adapter.WithPutError(boom)
	_, err = memstore.Create(ctx, tmpl, testmodels.Person{Name: "X"})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, tmpl.Update(ctx, testmodels.Person{ID: "p1"}), boom)
	adapter.WithPutError(nil)

	adapter.WithRemoveError(boom)
	_, _, err = tmpl.DeleteByID(ctx, "p1", personType)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, tmpl.DeleteAll(ctx, personType), boom)
	adapter.WithRemoveError(nil)

	adapter.WithCacheError(boom)
	_, err = tmpl.Count(ctx, personType)
	assert.ErrorIs(t, err, boom)
}
