package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"gitlab.com/tozd/go/errors"
	"go.etcd.io/bbolt"

	"sdkgen/config"
)

// CurrentSchemaVersion is the layout of the records and results buckets.
// Stores stamped with any other version are cleared and regenerated.
const CurrentSchemaVersion = 1

var (
	keySchemaVersion = []byte("schema_version")
	keyConfigHash    = []byte("config_hash")
)

// Stamp identifies the schema and generator configuration that produced
// the stored records. A zero Stamp means nothing was generated yet.
type Stamp struct {
	Version    int
	ConfigHash string
}

func (s *BoltStore) GetStamp() (Stamp, error) {
	var stamp Stamp
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		stamp.ConfigHash = string(meta.Get(keyConfigHash))

		raw := meta.Get(keySchemaVersion)
		if raw == nil {
			return nil
		}
		v, err := strconv.Atoi(string(raw))
		if err != nil {
			return errors.Errorf("corrupt schema version %q", raw)
		}
		stamp.Version = v
		return nil
	})
	return stamp, err
}

// StampWith records the current schema version and the hash of cfg.
func (s *BoltStore) StampWith(cfg *config.Config) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keySchemaVersion, []byte(strconv.Itoa(CurrentSchemaVersion))); err != nil {
			return err
		}
		return meta.Put(keyConfigHash, []byte(ComputeConfigHash(cfg)))
	})
}

// Staleness says whether stored records can be reused under a configuration.
type Staleness struct {
	Stale  bool
	Reason string
}

// CheckStale compares the stored stamp against cfg. An unstamped store is
// never stale since it holds nothing to discard.
func (s *BoltStore) CheckStale(cfg *config.Config) (Staleness, error) {
	stamp, err := s.GetStamp()
	if err != nil {
		return Staleness{}, errors.WithMessage(err, "read stamp")
	}

	switch {
	case stamp == (Stamp{}):
		return Staleness{}, nil
	case stamp.Version != CurrentSchemaVersion:
		return Staleness{Stale: true, Reason: "state written with schema v" + strconv.Itoa(stamp.Version)}, nil
	case stamp.ConfigHash != ComputeConfigHash(cfg):
		return Staleness{Stale: true, Reason: "generator configuration changed"}, nil
	}
	return Staleness{}, nil
}

// ComputeConfigHash hashes the configuration that influences generated
// output. Logging and input discovery settings are left out.
func ComputeConfigHash(cfg *config.Config) string {
	relevant := struct {
		AssumedCC        string            `json:"assumed_cc"`
		ReceiverMarker   string            `json:"receiver_marker"`
		TypeReplacements map[string]string `json:"type_replacements"`
		UseStaticInline  bool              `json:"use_static_inline"`
		WrapVirtuals     bool              `json:"wrap_virtuals"`
		Category         string            `json:"category"`
		DumpPrototypes   bool              `json:"dump_prototypes"`
	}{
		AssumedCC:        cfg.Extract.AssumedCC,
		ReceiverMarker:   cfg.Extract.ReceiverMarker,
		TypeReplacements: cfg.Extract.TypeReplacements,
		UseStaticInline:  cfg.Generate.UseStaticInline,
		WrapVirtuals:     cfg.Generate.WrapVirtuals,
		Category:         cfg.Generate.Category,
		DumpPrototypes:   cfg.Generate.DumpPrototypes,
	}

	// encoding/json sorts map keys.
	data, _ := json.Marshal(relevant)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Clear drops every record and result. The stamp is kept.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRecords, bucketResults} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}
