package mysql

const createLakeObjectsSQL = `
CREATE TABLE IF NOT EXISTS lake_objects (
  container   VARCHAR(64)  NOT NULL,
  path        VARCHAR(255) NOT NULL,
  content     LONGBLOB     NOT NULL,
  updated_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (container, path)
)`

const upsertObjectSQL = `
INSERT INTO lake_objects (container, path, content)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE content = VALUES(content)`

const selectObjectSQL = `
SELECT content FROM lake_objects WHERE container = ? AND path = ?`

const listObjectsSQL = `
SELECT path FROM lake_objects WHERE container = ? AND path LIKE CONCAT(?, '%') ORDER BY path`
