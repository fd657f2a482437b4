package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtensionMechanism(t *testing.T) {
	tempDir := t.TempDir()

	// 1. Create a cellar-hello executable that prints the global flags it received.
	helloCmdSource := fmt.Sprintf(`
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Printf("%s=%%s\n", os.Getenv("%s"))
	fmt.Printf("%s=%%s\n", os.Getenv("%s"))
	fmt.Printf("%s=%%s\n", os.Getenv("%s"))
	fmt.Printf("args=%%v\n", os.Args[1:])
}
`, EnvFile, EnvFile, EnvCurrency, EnvCurrency, EnvVerbose, EnvVerbose)

	helloCmdPath := filepath.Join(tempDir, "cellar-hello")
	srcFile := helloCmdPath + ".go"
	if err := os.WriteFile(srcFile, []byte(helloCmdSource), 0644); err != nil {
		t.Fatalf("Failed to write cellar-hello source: %v", err)
	}
	build := exec.Command("go", "build", "-o", helloCmdPath, srcFile)
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("Failed to compile cellar-hello: %v", err)
	}

	// 2. Compile the main cellar binary.
	cellarBinaryPath := filepath.Join(tempDir, "cellar")
	build = exec.Command("go", "build", "-o", cellarBinaryPath, "../cellar")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("Failed to compile cellar binary: %v", err)
	}

	// 3. Call the extension through cellar with global flags.
	expectedFile := filepath.Join(tempDir, "random.jsonl")
	args := []string{
		"-file", expectedFile,
		"-currency", "XYZ",
		"-v",
		"hello", "world",
	}
	cellarCmd := exec.Command(cellarBinaryPath, args...)
	cellarCmd.Env = []string{"PATH=" + tempDir + string(os.PathListSeparator) + os.Getenv("PATH")}

	var stdout, stderr bytes.Buffer
	cellarCmd.Stdout = &stdout
	cellarCmd.Stderr = &stderr
	if err := cellarCmd.Run(); err != nil {
		t.Fatalf("cellar command failed: %v\nStdout: %s\nStderr: %s", err, stdout.String(), stderr.String())
	}

	output := stdout.String()
	for _, want := range []string{
		EnvFile + "=" + expectedFile,
		EnvCurrency + "=XYZ",
		EnvVerbose + "=true",
		"args=[world]",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, but got:\n%s", want, output)
		}
	}
}
