package config

import "os"

func IsDebug() bool {
	return os.Getenv("SCOUT_DEBUG") == "1"
}
