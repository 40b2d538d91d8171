package configs

import "os"

var Envs = struct {
	FRONTEND_ORIGIN string
	POSTGRES_URL    string
	GIN_MODE        string
	PORT            string
}{
	FRONTEND_ORIGIN: os.Getenv("FRONTEND_ORIGIN"),
	POSTGRES_URL:    os.Getenv("POSTGRES_URL"),
	GIN_MODE:        os.Getenv("GIN_MODE"),
	PORT:            os.Getenv("PORT"),
}
