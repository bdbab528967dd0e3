package main

import (
	"database/sql"; "fmt"; "log"; "os"; "path/filepath"; "runtime"; "strings"; "sync"; "time"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/knaka/go-sqlite3-fts5"
)

var DB *sql.DB

// The database caches derived state of the content folder, and what gets
// derived depends on ONLY_PUBLIC (excluded lines change the extracted links)
// and CONTENT_SEARCH (the FTS table only exists when its on). A marker file
// per option remembers what the database was built with; when an option
// flips, the database is deleted and rebuilt from scratch.
func syncMarker(cacheDir, filename, envValue, disableValue string) (change bool) {
	markerPath := filepath.Join(cacheDir, filename)
	_, err := os.Stat(markerPath)
	markerExists := (err == nil)
	wantsDisabled := envValue == disableValue
	// If (marker doesn't exist but the option is wanted) OR (marker exists but the option is not wanted)
	if (!markerExists && !wantsDisabled) || (markerExists && wantsDisabled) {
		if _,err = os.Stat(filepath.Join(cacheDir, "lore.db")); err == nil {
			fmt.Printf("%s variable has changed. The database will be regenerated.\n", strings.ToUpper(filename))
		}
		if !markerExists { os.WriteFile(markerPath, []byte{}, 0644)
		} else { os.Remove(markerPath) }
		return true
	}
	return false
}
func checkDatabaseConsistency(cacheDir string) {
	change1 := syncMarker(cacheDir, "only_public", getEnvValue("ONLY_PUBLIC"), "no")
	change2 := syncMarker(cacheDir, "content_search", getEnvValue("CONTENT_SEARCH"), "false")
	if change1 || change2 {
		os.Remove(filepath.Join(cacheDir, "lore.db"))
		os.Remove(filepath.Join(cacheDir, "lore.db-shm"))
		os.Remove(filepath.Join(cacheDir, "lore.db-wal"))
	}
}

func InitDB() {
	var err error

	err = os.MkdirAll(getEnvValue("CACHE_FOLDER"), 0755); if err!=nil {log.Fatalln("Cache dir could not be created.", err)}

	checkDatabaseConsistency(getEnvValue("CACHE_FOLDER"))

	// Open (creates file if not exists)
	DB, err = sql.Open("sqlite3", "file:"+filepath.Join(getEnvValue("CACHE_FOLDER"),"lore.db"))
	if err != nil { log.Fatal(err) }
	// Ensure connection is alive
	if err := DB.Ping(); err != nil { log.Fatal(err) }
	_, _ = DB.Exec("PRAGMA journal_mode=WAL;") // Enable parallel reading on writes.
	_, _ = DB.Exec("PRAGMA synchronous=NORMAL;")
	_, _ = DB.Exec("PRAGMA foreign_keys = ON;")
	if err := ensureSchema(DB); err != nil { log.Fatal(err) }
}
func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil { return err }
	defer tx.Rollback()

	// Pages: file is the relative path key, mtime and date as unix seconds.
	_, err = tx.Exec(`CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT UNIQUE,
		mtime INTEGER NOT NULL,
		date  INTEGER,
		title TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_page_file ON pages(file);
	CREATE INDEX IF NOT EXISTS idx_page_date ON pages(date);
	`)
	if err != nil { return err }

	_, err = tx.Exec(`CREATE TABLE IF NOT EXISTS outlinks (
		"from" TEXT NOT NULL,
		"to"   TEXT NOT NULL,
		PRIMARY KEY ("from", "to"),
		FOREIGN KEY ("from") REFERENCES pages(file) ON DELETE CASCADE
	) WITHOUT ROWID;
	CREATE INDEX IF NOT EXISTS idx_outlink_to ON outlinks("to");
	`)
	if err != nil { return err }

	_, err = tx.Exec(`CREATE TABLE IF NOT EXISTS attachments (
		"from" TEXT NOT NULL,
		file TEXT NOT NULL,
		PRIMARY KEY ("from", file)
		FOREIGN KEY ("from") REFERENCES pages(file) ON DELETE CASCADE
	) WITHOUT ROWID;
	CREATE INDEX IF NOT EXISTS idx_attachment_file ON attachments(file);
	`)
	if err != nil { return err }

	// Params: one row per (from, key, value).
	_, err = tx.Exec(`CREATE TABLE IF NOT EXISTS params (
		"from"  TEXT NOT NULL,
		key   TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY ("from", key, value)
		FOREIGN KEY ("from") REFERENCES pages(file) ON DELETE CASCADE
	) WITHOUT ROWID;
	CREATE INDEX IF NOT EXISTS idx_params_key_val_from ON params(key, value, "from");
	CREATE INDEX IF NOT EXISTS idx_params_from ON params("from");
	`)
	if err != nil { return err }

	// FTS5 virtual table for content searching
	if getEnvValue("CONTENT_SEARCH") == "true" {
		_, err = tx.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(
			title, content,
			content='', contentless_delete=1,
			tokenize="unicode61 remove_diacritics 2 tokenchars '#'"
		);`)
		if err != nil { return err }
		// Sync on delete, like ON DELETE CASCADE. Upserts delete first, so no update trigger is needed.
		_, err = tx.Exec(`CREATE TRIGGER IF NOT EXISTS pages_ad AFTER DELETE ON pages BEGIN
			DELETE FROM pages_fts WHERE rowid = old.id;
		END;`)
		if err != nil { return err }
	}

	return tx.Commit()
}

// syncDatabase reconciles the database with the filesystem: new and modified
// pages (by mtime) are upserted, pages whose files are gone are deleted.
func syncDatabase() {
	syncStartTime := time.Now()

	// Modification times currently recorded in the database.
	dbMtimes := make(map[string]int64)
	rows, err := DB.Query(`SELECT file, mtime FROM pages;`)
	if err != nil { log.Fatalln(err) }
	defer rows.Close()
	for rows.Next() {
		var file string; var mtime int64
		if err := rows.Scan(&file, &mtime); err != nil { log.Fatalln(err) }
		dbMtimes[file] = mtime
	}

	var changedPages = make(map[string]int64) // New and modified pages.
	err = walkContentPages(func(relPath string) {
		finfo, err := os.Stat(filepath.Join(contentPath, relPath)); if err != nil {log.Println(relPath, err); return}
		mTime := finfo.ModTime().Unix()
		if dbMtimes[relPath] != mTime { changedPages[relPath] = mTime }
		// Whatever remains in dbMtimes after the walk only exists in the database.
		delete(dbMtimes, relPath)
	})
	if err != nil {fmt.Println("Error walking the path:", err)}

	var deletedPages []string
	for deleted := range dbMtimes {deletedPages = append(deletedPages, deleted)}
	deletePages(deletedPages)

	upserted := upsertPages(changedPages)
	log.Printf("Database sync: %d upserted, %d deleted (in %v ms)\n", upserted, len(deletedPages), time.Since(syncStartTime).Milliseconds())
}

func deletePages(relPaths []string) {
	if len(relPaths) == 0 { return }

	tx, err := DB.Begin()
	if err != nil { log.Println(err); return }
	defer tx.Rollback()

	delPages, _ := tx.Prepare(`DELETE FROM pages WHERE file = ?`)
	defer delPages.Close()

	for _, relPath := range relPaths {
		delPages.Exec(relPath)
		pageCache.Delete(relPath)
	}
	tx.Commit()
}

// bulkPageInfo parses the given pages concurrently.
func bulkPageInfo(relPaths map[string]int64) []Page {
	pathsCh := make(chan string, 256)
	var mu sync.Mutex
	var pages []Page
	var wg sync.WaitGroup
	for i:=0; i < runtime.NumCPU(); i++ {
		wg.Add(1)
		go func(){
			defer wg.Done()
			for relPath := range pathsCh {
				pageinfo, err := getPageInfo(relPath)
				if err != nil {log.Println("Error reading page:", relPath, err); continue}
				mu.Lock(); pages = append(pages, pageinfo); mu.Unlock()
			}
		}()
	}
	for relPath := range relPaths {pathsCh <- relPath}
	close(pathsCh)
	wg.Wait()
	return pages
}

func upsertPages(relPathMTimes map[string]int64) (upserted int) {
	if len(relPathMTimes) == 0 {return 0}

	pages := bulkPageInfo(relPathMTimes)

	tx, err := DB.Begin()
	if err != nil { log.Println("Failed to begin transaction:", err); return 0}
	defer tx.Rollback()

	// Delete-then-insert keeps the dependent tables and the FTS index in sync
	// without separate update paths.
	delPages, _ := tx.Prepare(`DELETE FROM pages WHERE file = ?`)
	defer delPages.Close()

	stmtPage, _ := tx.Prepare(`INSERT INTO pages (file, mtime, date, title) VALUES (?, ?, ?, ?)`)
	defer stmtPage.Close()

	var stmtPageFTS *sql.Stmt
	if getEnvValue("CONTENT_SEARCH")=="true"{
		stmtPageFTS, _ = tx.Prepare(`INSERT INTO pages_fts (rowid, title, content) VALUES (?, ?, ?)`)
		defer stmtPageFTS.Close()
	}

	stmtLink, _ := tx.Prepare(`INSERT INTO outlinks ("from", "to") VALUES (?, ?)`)
	defer stmtLink.Close()

	stmtAtt, _ := tx.Prepare(`INSERT INTO attachments ("from", "file") VALUES (?, ?)`)
	defer stmtAtt.Close()

	stmtParam, _ := tx.Prepare(`INSERT OR IGNORE INTO params ("from", "key", "value") VALUES (?, ?, ?)`)
	defer stmtParam.Close()

	for _, page := range pages {
		if _, err := delPages.Exec(page.File); err != nil { log.Println("Error deleting page:", page.File, err) }

		// Skip the private pages.
		if !isServed(page.Public){continue}

		// Refresh the cached copy without promoting it.
		pageCache.Update(page.File, page)

		result, err := stmtPage.Exec(page.File, relPathMTimes[page.File], page.Date, page.Title)
		if err != nil { log.Println("Error inserting page:", page.File, err); continue }

		if getEnvValue("CONTENT_SEARCH")=="true" {
			rowId, err := result.LastInsertId()
			if err != nil{log.Println("Error getting the page row id:", page.File, err)}
			_,err = stmtPageFTS.Exec(rowId, page.Title, page.Content)
			if err!=nil{log.Println("Error indexing the page content:", page.File, err)}
		}

		for _, target := range page.OutLinks { _,err := stmtLink.Exec(page.File, target); if err!=nil{log.Println(page.File, target, err)} }
		for _, att := range page.Attachments { _,err := stmtAtt.Exec(page.File, att); if err!=nil{log.Println(page.File, att, err)} }

		// Params values can be scalars or lists; flatten to one row per value.
		for key, val := range page.Params {
			for _, subVal := range ToStrArr(val) { stmtParam.Exec(page.File, key, subVal) }
		}
		upserted++
	}
	if err := tx.Commit(); err != nil { log.Println("Failed to commit transaction:", err) }
	return upserted
}

// GetRows executes queryStr with queryVals and returns the rows as maps keyed
// by column name. Results go through the TTL cache; templates use this as
// the Query function.
func GetRows(queryStr string, queryVals ...any) (returnData []map[string]any) {
	returnData, exists := queryCache.Get(GetQueryKey(queryStr, queryVals...))
	if exists {return returnData}

	rows, err := DB.Query(queryStr, queryVals...)
	if err!=nil{log.Println(err); return returnData}
	defer rows.Close()
	columns,err := rows.Columns()
	if err!=nil{log.Println("Columns error:",err); return returnData}

	for rows.Next() {
		values := make([]any, len(columns))
		valuePointers := make([]any, len(columns))
		for i := range values { valuePointers[i] = &values[i] }
		if err := rows.Scan(valuePointers...); err != nil {
			log.Println("failed to scan page row:", err); return returnData
		}
		rowMap := make(map[string]any)
		for i, colName := range columns {
			val := values[i]
			// SQLite returns texts as []byte. We need to convert them to strings.
			if b, ok := val.([]byte); ok { rowMap[colName] = string(b)
			} else { rowMap[colName] = val }
		}
		returnData = append(returnData, rowMap)
	}

	queryCache.Set(GetQueryKey(queryStr, queryVals...), returnData, time.Second*10)

	return returnData
}
