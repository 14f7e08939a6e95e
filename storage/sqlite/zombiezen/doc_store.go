package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"

	sent "github.com/revelaction/semalign/sentence"
	"github.com/revelaction/semalign/storage"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

type DocStore struct {
	pool *sqlitex.Pool

	// RunId is stored with every doc written.
	RunId string
}

var _ storage.RecordRepository = (*DocStore)(nil)

func NewDocStore(pool *sqlitex.Pool) *DocStore {
	return &DocStore{pool: pool}
}

func (h *DocStore) List(match string) ([]sent.Doc, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	var docs []sent.Doc
	err = sqlitex.Execute(conn, "SELECT id, title, corpus FROM docs WHERE instr(title, ?) > 0 ORDER BY corpus, title", &sqlitex.ExecOptions{
		Args: []interface{}{match},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			docs = append(docs, sent.Doc{
				Id:     stmt.ColumnInt(0),
				Title:  stmt.ColumnText(1),
				Corpus: stmt.ColumnText(2),
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (h *DocStore) Read(title string) (sent.Doc, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return sent.Doc{}, err
	}
	defer h.pool.Put(conn)

	var doc sent.Doc
	found := false
	err = sqlitex.Execute(conn, "SELECT id, title, corpus FROM docs WHERE title = ?", &sqlitex.ExecOptions{
		Args: []interface{}{title},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			doc.Id = stmt.ColumnInt(0)
			doc.Title = stmt.ColumnText(1)
			doc.Corpus = stmt.ColumnText(2)
			return nil
		},
	})
	if err != nil {
		return sent.Doc{}, err
	}
	if !found {
		return sent.Doc{}, fmt.Errorf("doc %s: %w", title, storage.ErrNotFound)
	}

	doc.Records, err = readRecords(conn, "s.doc_id = ?", doc.Id)
	if err != nil {
		return sent.Doc{}, err
	}
	return doc, nil
}

func (h *DocStore) Sentence(id string) (sent.Record, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return sent.Record{}, err
	}
	defer h.pool.Put(conn)

	records, err := readRecords(conn, "s.sid = ?", id)
	if err != nil {
		return sent.Record{}, err
	}
	if len(records) == 0 {
		return sent.Record{}, fmt.Errorf("sentence %s: %w", id, storage.ErrNotFound)
	}
	return records[0], nil
}

// readRecords returns the records of the sentences matching where, with
// their annotations, in insertion order.
func readRecords(conn *sqlite.Conn, where string, arg interface{}) ([]sent.Record, error) {
	var records []sent.Record
	index := map[int64]int{}

	err := sqlitex.Execute(conn, "SELECT s.id, s.sid, s.text, s.tokens FROM sentences s WHERE "+where+" ORDER BY s.id", &sqlitex.ExecOptions{
		Args: []interface{}{arg},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			rec := sent.Record{
				Id:          stmt.ColumnText(1),
				Text:        stmt.ColumnText(2),
				Annotations: []sent.Annotation{},
			}
			if err := json.Unmarshal([]byte(stmt.ColumnText(3)), &rec.Tokens); err != nil {
				return err
			}
			index[stmt.ColumnInt64(0)] = len(records)
			records = append(records, rec)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	query := `SELECT a.sentence_id, a.token, a.cfrom, a.cto, a.sk, a.lookup_key, a.sense_id, a.lemma
		FROM annotations a JOIN sentences s ON a.sentence_id = s.id
		WHERE ` + where + ` ORDER BY a.sentence_id, a.rowid`

	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []interface{}{arg},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			i, ok := index[stmt.ColumnInt64(0)]
			if !ok {
				return nil
			}
			records[i].Annotations = append(records[i].Annotations, sent.Annotation{
				Span: sent.Span{
					TokenIndex: stmt.ColumnInt(1),
					Start:      stmt.ColumnInt(2),
					End:        stmt.ColumnInt(3),
				},
				Sense: sent.Sense{
					RawKey:      stmt.ColumnText(4),
					Key:         stmt.ColumnText(5),
					CanonicalId: stmt.ColumnText(6),
					Lemma:       stmt.ColumnText(7),
				},
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (h *DocStore) Unresolved() ([]storage.Unresolved, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	counts := map[storage.Unresolved]int{}
	err = sqlitex.Execute(conn, "SELECT CASE WHEN lookup_key = '' THEN sk ELSE lookup_key END AS k, lemma, COUNT(*) FROM annotations WHERE sense_id = '' GROUP BY k, lemma", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			counts[storage.Unresolved{Key: stmt.ColumnText(0), Lemma: stmt.ColumnText(1)}] = stmt.ColumnInt(2)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return storage.SortUnresolved(counts), nil
}

// Write stores doc in one transaction. A doc already stored with the same
// digest is refused with storage.ErrDocExists. A doc stored with a different
// digest is replaced.
func (h *DocStore) Write(doc sent.Doc) (err error) {
	digest, err := doc.Digest()
	if err != nil {
		return err
	}

	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer h.pool.Put(conn)

	// Start Transaction
	defer sqlitex.Save(conn)(&err)

	var (
		oldId     int64
		oldDigest string
	)
	err = sqlitex.Execute(conn, "SELECT id, digest FROM docs WHERE title = ?", &sqlitex.ExecOptions{
		Args: []interface{}{doc.Title},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			oldId = stmt.ColumnInt64(0)
			oldDigest = stmt.ColumnText(1)
			return nil
		},
	})
	if err != nil {
		return err
	}

	if oldId != 0 {
		if oldDigest == digest {
			return storage.ErrDocExists
		}
		if err = deleteDoc(conn, oldId); err != nil {
			return err
		}
	}

	err = sqlitex.Execute(conn, "INSERT INTO docs (title, corpus, digest, run_id) VALUES (?, ?, ?, ?)", &sqlitex.ExecOptions{
		Args: []interface{}{doc.Title, doc.Corpus, digest, h.RunId},
	})
	if err != nil {
		return fmt.Errorf("failed to insert doc: %w", err)
	}
	docId := conn.LastInsertRowID()

	for _, rec := range doc.Records {
		data, err := json.Marshal(rec.Tokens)
		if err != nil {
			return err
		}

		err = sqlitex.Execute(conn, "INSERT INTO sentences (doc_id, sid, text, tokens) VALUES (?, ?, ?, ?)", &sqlitex.ExecOptions{
			Args: []interface{}{docId, rec.Id, rec.Text, string(data)},
		})
		if err != nil {
			return fmt.Errorf("failed to insert sentence: %w", err)
		}
		sentId := conn.LastInsertRowID()

		for _, a := range rec.Annotations {
			err = sqlitex.Execute(conn, "INSERT INTO annotations (sentence_id, token, cfrom, cto, sk, lookup_key, sense_id, lemma) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
				Args: []interface{}{sentId, a.Span.TokenIndex, a.Span.Start, a.Span.End, a.Sense.RawKey, a.Sense.Key, a.Sense.CanonicalId, a.Sense.Lemma},
			})
			if err != nil {
				return fmt.Errorf("failed to insert annotation: %w", err)
			}
		}
	}

	return nil
}

func deleteDoc(conn *sqlite.Conn, id int64) error {
	stmts := []string{
		"DELETE FROM annotations WHERE sentence_id IN (SELECT id FROM sentences WHERE doc_id = ?)",
		"DELETE FROM sentences WHERE doc_id = ?",
		"DELETE FROM docs WHERE id = ?",
	}
	for _, q := range stmts {
		if err := sqlitex.Execute(conn, q, &sqlitex.ExecOptions{Args: []interface{}{id}}); err != nil {
			return fmt.Errorf("failed to delete doc %d: %w", id, err)
		}
	}
	return nil
}
