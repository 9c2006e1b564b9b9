// main.go
package main

import (
	"github.com/joho/godotenv"

	"github.com/LabNeuroCogDevel/EEGTaskPC/cmd"
	"github.com/LabNeuroCogDevel/EEGTaskPC/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()

	// Load .env if present (DEBUG=1 and friends); missing file is not an error.
	_ = godotenv.Load()

	cmd.Execute()
}
