package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/f3rmion/suiwen/internal/hanzi"
)

// VocabFields are the fields of the note type written by WriteVocabDeck.
var VocabFields = []string{"Hanzi", "Pinyin", "Meaning"}

const schema = `
CREATE TABLE col (
	id integer primary key, crt integer not null, mod integer not null,
	scm integer not null, ver integer not null, dty integer not null,
	usn integer not null, ls integer not null, conf text not null,
	models text not null, decks text not null, dconf text not null,
	tags text not null
);
CREATE TABLE notes (
	id integer primary key, guid text not null, mid integer not null,
	mod integer not null, usn integer not null, tags text not null,
	flds text not null, sfld integer not null, csum integer not null,
	flags integer not null, data text not null
);
CREATE TABLE cards (
	id integer primary key, nid integer not null, did integer not null,
	ord integer not null, mod integer not null, usn integer not null,
	type integer not null, queue integer not null, due integer not null,
	ivl integer not null, factor integer not null, reps integer not null,
	lapses integer not null, left integer not null, odue integer not null,
	odid integer not null, flags integer not null, data text not null
);
CREATE TABLE revlog (
	id integer primary key, cid integer not null, usn integer not null,
	ease integer not null, ivl integer not null, lastIvl integer not null,
	factor integer not null, time integer not null, type integer not null
);
CREATE TABLE graves (usn integer not null, oid integer not null, type integer not null);
CREATE INDEX ix_notes_usn on notes (usn);
CREATE INDEX ix_cards_usn on cards (usn);
CREATE INDEX ix_cards_nid on cards (nid);
CREATE INDEX ix_cards_sched on cards (did, queue, due);
CREATE INDEX ix_revlog_cid on revlog (cid);
`

const cardCSS = `.card { font-family: sans-serif; font-size: 24px; text-align: center; }
.hanzi { font-size: 96px; }`

// WriteVocabDeck writes a new .apkg at path with one Basic card per
// notebook item: the character on the front, pinyin and meaning on the back.
func WriteVocabDeck(path, deckName string, items []hanzi.VocabItem) error {
	tempDir, err := os.MkdirTemp("", "suiwen-anki-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := writeCollection(dbPath, deckName, items, time.Now()); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	if err := addFile(zw, "collection.anki2", dbPath); err != nil {
		return fmt.Errorf("creating zip: %w", err)
	}
	media, err := zw.Create("media")
	if err != nil {
		return fmt.Errorf("creating zip: %w", err)
	}
	if _, err := io.WriteString(media, "{}"); err != nil {
		return fmt.Errorf("creating zip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zip: %w", err)
	}

	return out.Close()
}

func addFile(zw *zip.Writer, name, src string) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func writeCollection(dbPath, deckName string, items []hanzi.VocabItem, now time.Time) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	base := now.UnixMilli()
	modelID, deckID := base, base+1
	sec := now.Unix()

	models, decks, dconf, conf, err := collectionJSON(modelID, deckID, deckName, sec)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO col VALUES (1, ?, ?, ?, 11, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		sec, base, base, conf, models, decks, dconf); err != nil {
		return fmt.Errorf("writing collection: %w", err)
	}

	for i, item := range items {
		noteID := base + 10 + int64(i)
		flds := strings.Join([]string{item.Char, item.Pinyin, item.Meaning}, FieldSeparator)
		if _, err := tx.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, -1, ' suiwen ', ?, ?, ?, 0, '')`,
			noteID, guid(item.Char), modelID, sec, flds, item.Char, checksum(item.Char)); err != nil {
			return fmt.Errorf("writing note %s: %w", item.Char, err)
		}
		if _, err := tx.Exec(`INSERT INTO cards VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
			noteID, noteID, deckID, sec, i+1); err != nil {
			return fmt.Errorf("writing card %s: %w", item.Char, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing collection: %w", err)
	}
	return nil
}

func collectionJSON(modelID, deckID int64, deckName string, sec int64) (models, decks, dconf, conf string, err error) {
	fields := make([]map[string]interface{}, len(VocabFields))
	for i, name := range VocabFields {
		fields[i] = map[string]interface{}{
			"name": name, "ord": i, "sticky": false, "rtl": false,
			"font": "Arial", "size": 20, "media": []string{},
		}
	}

	model := map[string]interface{}{
		"id":    modelID,
		"name":  "suiwen Basic",
		"type":  0,
		"mod":   sec,
		"usn":   -1,
		"sortf": 0,
		"did":   deckID,
		"flds":  fields,
		"tmpls": []map[string]interface{}{{
			"name":  "Card 1",
			"ord":   0,
			"qfmt":  `<div class="hanzi">{{Hanzi}}</div>`,
			"afmt":  `{{FrontSide}}<hr id="answer">{{Pinyin}}<br>{{Meaning}}`,
			"bqfmt": "",
			"bafmt": "",
			"did":   nil,
		}},
		"css":       cardCSS,
		"latexPre":  "",
		"latexPost": "",
		"tags":      []string{},
		"vers":      []int{},
		"req":       []interface{}{[]interface{}{0, "all", []int{0}}},
	}

	deck := map[string]interface{}{
		"id": deckID, "name": deckName, "desc": "", "mod": sec, "usn": -1,
		"conf": 1, "dyn": 0, "collapsed": false, "extendNew": 10, "extendRev": 50,
		"newToday": []int{0, 0}, "revToday": []int{0, 0}, "lrnToday": []int{0, 0}, "timeToday": []int{0, 0},
	}
	defaultDeck := map[string]interface{}{
		"id": 1, "name": "Default", "desc": "", "mod": sec, "usn": -1,
		"conf": 1, "dyn": 0, "collapsed": false, "extendNew": 10, "extendRev": 50,
		"newToday": []int{0, 0}, "revToday": []int{0, 0}, "lrnToday": []int{0, 0}, "timeToday": []int{0, 0},
	}

	options := map[string]interface{}{
		"1": map[string]interface{}{
			"id": 1, "name": "Default", "mod": 0, "usn": 0, "maxTaken": 60, "autoplay": true,
			"timer": 0, "replayq": true, "dyn": false,
			"new": map[string]interface{}{"delays": []int{1, 10}, "ints": []int{1, 4, 7}, "initialFactor": 2500, "order": 1, "perDay": 20},
			"rev": map[string]interface{}{"perDay": 200, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500},
			"lapse": map[string]interface{}{"delays": []int{10}, "mult": 0, "minInt": 1, "leechFails": 8, "leechAction": 0},
		},
	}

	collConf := map[string]interface{}{
		"nextPos": 1, "estTimes": true, "activeDecks": []int64{1}, "sortType": "noteFld",
		"timeLim": 0, "sortBackwards": false, "addToCur": true, "curDeck": deckID,
		"newSpread": 0, "dueCounts": true, "curModel": strconv.FormatInt(modelID, 10), "collapseTime": 1200,
	}

	parts := []interface{}{
		map[string]interface{}{strconv.FormatInt(modelID, 10): model},
		map[string]interface{}{"1": defaultDeck, strconv.FormatInt(deckID, 10): deck},
		options,
		collConf,
	}
	out := make([]string, len(parts))
	for i, part := range parts {
		data, err := json.Marshal(part)
		if err != nil {
			return "", "", "", "", fmt.Errorf("marshaling collection: %w", err)
		}
		out[i] = string(data)
	}
	return out[0], out[1], out[2], out[3], nil
}

// checksum is Anki's note checksum: the first 8 hex digits of the SHA-1 of
// the sort field.
func checksum(sortField string) int64 {
	sum := sha1.Sum([]byte(StripHTML(sortField)))
	v, _ := strconv.ParseInt(fmt.Sprintf("%x", sum[:4]), 16, 64)
	return v
}

// guid derives a stable note GUID from the character so re-exports update
// the same notes.
func guid(char string) string {
	sum := sha1.Sum([]byte("suiwen:" + char))
	return fmt.Sprintf("%x", sum[:5])
}
