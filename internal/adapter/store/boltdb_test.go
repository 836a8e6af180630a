package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"sdkgen/config"
	"sdkgen/internal/domain"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestBoltStore_Records(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.StampWith(config.DefaultConfig()))

	rec := domain.ClassRecord{Class: "CPed", Fingerprint: "abc", Functions: 3, Files: []string{"Ped.h", "Ped.cpp"}}
	result := &domain.GroupedResult{
		Class:   "CPed",
		Methods: []domain.FunctionDescriptor{{Class: "CPed", Name: "Say", CC: domain.Thiscall, VTIndex: domain.NotVirtual}},
	}
	require.NoError(t, st.PutRecordWithResult(rec, result))

	got, found, err := st.GetRecord("CPed")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec, got)

	stored, err := st.GetResult("CPed")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Methods, 1)
	assert.Equal(t, domain.Thiscall, stored.Methods[0].CC)
	assert.Equal(t, domain.Method, stored.Methods[0].Category)

	_, found, err = st.GetRecord("CVehicle")
	require.NoError(t, err)
	assert.False(t, found)

	missing, err := st.GetResult("CVehicle")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, st.DeleteRecord("CPed"))
	recs, err := st.ListRecords()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestBoltStore_ResultsBucketOnOpen(t *testing.T) {
	st := openTestStore(t)
	rec := domain.ClassRecord{Class: "CPed"}
	require.NoError(t, st.PutRecordWithResult(rec, &domain.GroupedResult{Class: "CPed"}))

	res, err := st.GetResult("CPed")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "CPed", res.Class)
}

func TestBoltStore_Stamp(t *testing.T) {
	st := openTestStore(t)
	cfg := config.DefaultConfig()

	stamp, err := st.GetStamp()
	require.NoError(t, err)
	assert.Equal(t, Stamp{}, stamp)

	staleness, err := st.CheckStale(cfg)
	require.NoError(t, err)
	assert.False(t, staleness.Stale)

	require.NoError(t, st.StampWith(cfg))

	stamp, err = st.GetStamp()
	require.NoError(t, err)
	assert.Equal(t, Stamp{Version: CurrentSchemaVersion, ConfigHash: ComputeConfigHash(cfg)}, stamp)

	staleness, err = st.CheckStale(cfg)
	require.NoError(t, err)
	assert.False(t, staleness.Stale)

	changed := config.DefaultConfig()
	changed.Generate.WrapVirtuals = !changed.Generate.WrapVirtuals
	staleness, err = st.CheckStale(changed)
	require.NoError(t, err)
	assert.True(t, staleness.Stale)
	assert.Equal(t, "generator configuration changed", staleness.Reason)
}

func TestBoltStore_OtherSchemaVersionIsStale(t *testing.T) {
	st := openTestStore(t)
	cfg := config.DefaultConfig()
	require.NoError(t, st.StampWith(cfg))

	require.NoError(t, st.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, []byte("7"))
	}))
	staleness, err := st.CheckStale(cfg)
	require.NoError(t, err)
	assert.True(t, staleness.Stale)
	assert.Equal(t, "state written with schema v7", staleness.Reason)

	require.NoError(t, st.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, []byte("seven"))
	}))
	_, err = st.CheckStale(cfg)
	assert.Error(t, err)
}

func TestBoltStore_Clear(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.StampWith(config.DefaultConfig()))

	for _, class := range []string{"CPed", "CVehicle", "CHeli"} {
		require.NoError(t, st.PutRecordWithResult(domain.ClassRecord{Class: class}, &domain.GroupedResult{Class: class}))
	}
	require.NoError(t, st.Clear())

	recs, err := st.ListRecords()
	require.NoError(t, err)
	assert.Empty(t, recs)

	res, err := st.GetResult("CPed")
	require.NoError(t, err)
	assert.Nil(t, res)

	stamp, err := st.GetStamp()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, stamp.Version)

	require.NoError(t, st.PutRecordWithResult(domain.ClassRecord{Class: "CPed"}, &domain.GroupedResult{Class: "CPed"}))
	res, err = st.GetResult("CPed")
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestComputeConfigHash(t *testing.T) {
	a := config.DefaultConfig()
	b := config.DefaultConfig()
	assert.Equal(t, ComputeConfigHash(a), ComputeConfigHash(b))

	b.Extract.TypeReplacements["_QWORD"] = "uint64_t"
	assert.NotEqual(t, ComputeConfigHash(a), ComputeConfigHash(b))

	c := config.DefaultConfig()
	c.Logging.Level = "debug"
	assert.Equal(t, ComputeConfigHash(a), ComputeConfigHash(c))
}
