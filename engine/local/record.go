package local

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/YosefMac/Xapiand/engine"
)

var (
	bucketDocs     = []byte("docs")
	bucketPostings = []byte("postings")
	bucketSpelling = []byte("spelling")
	bucketMeta     = []byte("meta")

	keyLastDocID = []byte("lastdocid")
	keyDocCount  = []byte("doccount")
)

var allBuckets = [][]byte{bucketDocs, bucketPostings, bucketSpelling, bucketMeta}

// docRecord is the stored form of a document.
type docRecord struct {
	Values map[uint32][]byte           `msgpack:"v,omitempty"`
	Terms  map[string]engine.TermEntry `msgpack:"t,omitempty"`
	Data   []byte                      `msgpack:"d,omitempty"`
	Codec  CompressionType             `msgpack:"c,omitempty"`
}

func encodeDoc(doc *engine.Document, c CompressionType) ([]byte, error) {
	data, applied, err := compressPayload(doc.Data, c)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(&docRecord{
		Values: doc.Values,
		Terms:  doc.Terms,
		Data:   data,
		Codec:  applied,
	})
}

func decodeDoc(b []byte) (*engine.Document, error) {
	var rec docRecord
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("%w: decoding document: %w", engine.ErrDatabase, err)
	}
	data, err := decompressPayload(rec.Data, rec.Codec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrDatabase, err)
	}
	doc := engine.NewDocument()
	for slot, v := range rec.Values {
		doc.Values[slot] = v
	}
	for term, e := range rec.Terms {
		doc.Terms[term] = e
	}
	doc.Data = data
	return doc, nil
}

func docKey(id engine.DocID) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, uint32(id))
	return k
}

func getUint32(b *bbolt.Bucket, key []byte) uint32 {
	if b == nil {
		return 0
	}
	v := b.Get(key)
	if len(v) != 4 {
		return 0
	}
	return binary.BigEndian.Uint32(v)
}

func putUint32(b *bbolt.Bucket, key []byte, n uint32) error {
	v := make([]byte, 4)
	binary.BigEndian.PutUint32(v, n)
	return b.Put(key, v)
}

// loadPostings reads the posting list of term. The bitmap is copied out of
// the transaction's memory.
func loadPostings(b *bbolt.Bucket, term string) (*roaring.Bitmap, error) {
	bm := roaring.New()
	if b == nil {
		return bm, nil
	}
	v := b.Get([]byte(term))
	if v == nil {
		return bm, nil
	}
	if err := bm.UnmarshalBinary(v); err != nil {
		return nil, fmt.Errorf("%w: postings for %q: %w", engine.ErrDatabase, term, err)
	}
	return bm, nil
}

func storePostings(b *bbolt.Bucket, term string, bm *roaring.Bitmap) error {
	if bm.IsEmpty() {
		return b.Delete([]byte(term))
	}
	bm.RunOptimize()
	data, err := bm.ToBytes()
	if err != nil {
		return err
	}
	return b.Put([]byte(term), data)
}

func toDocIDs(bm *roaring.Bitmap) []engine.DocID {
	raw := bm.ToArray()
	ids := make([]engine.DocID, len(raw))
	for i, v := range raw {
		ids[i] = engine.DocID(v)
	}
	return ids
}
