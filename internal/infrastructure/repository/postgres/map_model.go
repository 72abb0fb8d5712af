package postgres

import "time"

const mapColumns = `id, hash, name, width, height, tileset, camera_top, camera_left, camera_bottom, camera_right, created_at`

type mapTableModel struct {
	ID           int64     `db:"id"`
	Hash         []byte    `db:"hash"`
	Name         string    `db:"name"`
	Width        int       `db:"width"`
	Height       int       `db:"height"`
	TileSet      string    `db:"tileset"`
	CameraTop    int       `db:"camera_top"`
	CameraLeft   int       `db:"camera_left"`
	CameraBottom int       `db:"camera_bottom"`
	CameraRight  int       `db:"camera_right"`
	CreatedAt    time.Time `db:"created_at"`
}

type mapInsertModel struct {
	Hash         []byte `db:"hash"`
	Name         string `db:"name"`
	Width        int    `db:"width"`
	Height       int    `db:"height"`
	TileSet      string `db:"tileset"`
	CameraTop    int    `db:"camera_top"`
	CameraLeft   int    `db:"camera_left"`
	CameraBottom int    `db:"camera_bottom"`
	CameraRight  int    `db:"camera_right"`
}
