package mysql

const upsertSnapshotPrefix = "INSERT INTO place_snapshots\n  (id, title, city, country, price, raw)\nVALUES "

// VALUES(col) keeps this working on MySQL 5.7 as well as 8.0.
const upsertSnapshotOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  title      = VALUES(title),\n" +
	"  city       = VALUES(city),\n" +
	"  country    = VALUES(country),\n" +
	"  price      = VALUES(price),\n" +
	"  raw        = VALUES(raw),\n" +
	"  fetched_at = CURRENT_TIMESTAMP\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Oldest first so the listing order matches the order places were first seen.
const listSnapshotsSQL = `
SELECT raw
FROM place_snapshots
ORDER BY fetched_at ASC, id ASC
LIMIT ?
`

const getSnapshotSQL = `SELECT raw FROM place_snapshots WHERE id = ?`

// -----------------------------------------------------------------------------
// FAVORITES
// -----------------------------------------------------------------------------

// INSERT IGNORE makes a repeated add a no-op.
const addFavoriteSQL = `INSERT IGNORE INTO favorites (owner, place_id) VALUES (?, ?)`

const removeFavoriteSQL = `DELETE FROM favorites WHERE owner = ? AND place_id = ?`

const listFavoritesSQL = `
SELECT place_id
FROM favorites
WHERE owner = ?
ORDER BY created_at DESC, place_id
`
