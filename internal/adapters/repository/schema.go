package repository

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

-- One row per canonical guess. Rows are only ever written through the tally
-- store, which accepts canonical surnames only.
CREATE TABLE IF NOT EXISTS guesses (
    surname TEXT PRIMARY KEY NOT NULL,
    count   INTEGER NOT NULL DEFAULT 1 CHECK (count >= 1)
);

CREATE INDEX IF NOT EXISTS idx_guesses_rank ON guesses(count DESC, surname ASC);
`

const (
	upsertGuessSQL = `
		INSERT INTO guesses (surname, count) VALUES (?, 1)
		ON CONFLICT(surname) DO UPDATE SET count = count + 1`

	selectGuessesSQL = `SELECT surname, count FROM guesses ORDER BY count DESC, surname ASC`

	countGuessesSQL = `SELECT COUNT(*) FROM guesses`

	pingSQL = `SELECT COUNT(*) FROM guesses LIMIT 1`

	deleteGuessesSQL = `DELETE FROM guesses`

	insertGuessSQL = `INSERT INTO guesses (surname, count) VALUES (?, ?)`
)
