package store

import "time"

type CollectionStats struct {
	Objects   int
	DataSize  int64
	DataAlloc int64
	Indices   int

	Created         time.Time
	LastWrite       time.Time
	DeletionCounter int
}

func (tx *Tx) Stats(coll string) (CollectionStats, error) {
	cs, err := tx.loadState(coll)
	if err != nil {
		return CollectionStats{}, err
	}
	result := CollectionStats{
		Indices:         len(cs.Indices),
		Created:         cs.Created,
		LastWrite:       cs.LastWrite,
		DeletionCounter: cs.DeletionCounter,
	}
	if buck := tx.stx.Bucket(coll, dataBucket); buck != nil {
		bs := buck.Stats()
		result.Objects = bs.KeyN
		result.DataSize = bs.LeafInuse
		result.DataAlloc = bs.TotalAlloc()
	}
	return result, nil
}

// Size returns the size of the underlying storage in bytes.
func (tx *Tx) Size() int64 {
	return tx.stx.Size()
}
