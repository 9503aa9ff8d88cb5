// Command authscope scans web pages for authentication UI: login and
// signup forms, password fields, OAuth provider buttons, and the links
// that lead to them. It runs one-shot scans from the command line and
// doubles as the server behind the bundled web UI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/ui"
)

func main() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(defaults.ExitUserError)
	}

	switch os.Args[1] {
	case "scan":
		runScan(os.Args[2:])
	case "defaults", "demo":
		runDefaults(os.Args[2:])
	case "serve", "server":
		runServe(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
		os.Exit(defaults.ExitSuccess)
	case "-v", "--version", "version":
		ui.PrintMiniBanner()
		os.Exit(defaults.ExitSuccess)
	default:
		// Assume bare flags mean scan, so "authscope -u example.com" works.
		runScan(os.Args[1:])
	}
}

func printUsage() {
	ui.PrintMiniBanner()
	fmt.Println("Scan web pages for authentication components.")
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("USAGE:"))
	fmt.Println("    authscope <command> [flags]")
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("COMMANDS:"))
	fmt.Println("    scan                   Scan one or more URLs for auth components")
	fmt.Println("    defaults               Scan the built-in demo site list")
	fmt.Println("    serve                  Run the web UI and JSON API")
	fmt.Println("    version                Print version and exit")
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("TARGETS:"))
	fmt.Println("    -u, -target <url>      Target URL(s), comma-separated or repeated")
	fmt.Println("    -l, -list <file>       File with target URLs, one per line")
	fmt.Println("    -stdin                 Read targets from stdin")
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("FETCH:"))
	fmt.Println("    -renderer <name>       Page renderer: chrome, static, or auto")
	fmt.Println("    -timeout <dur>         Page fetch timeout, clamped to 5s-30s")
	fmt.Println("    -x, -proxy <url>       HTTP/SOCKS5 proxy for page fetches")
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("DETECTION:"))
	fmt.Println("    -fallback <policy>     Bare password field policy: element or suppress")
	fmt.Println("    -providers <list>      OAuth provider allow-list, comma-separated")
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("OUTPUT:"))
	fmt.Println("    -o <file>              JSON report file")
	fmt.Println("    -jsonl-export <file>   JSONL report file")
	fmt.Println("    -csv-export <file>     CSV report file")
	fmt.Println("    -html-export <file>    HTML report file")
	fmt.Println("    -pdf-export <file>     PDF report file")
	fmt.Println("    -json                  JSONL to stdout instead of the result table")
	fmt.Println("    -stream                Print results as they finish")
	fmt.Println("    -s, -silent            Suppress banner and progress output")
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("CONFIG:"))
	fmt.Println("    -config <file>         YAML config file (default: authscope.yaml if present)")
	fmt.Println("    -profile <name>        Preset profile: quick, thorough")
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("CI GATES:"))
	fmt.Println("    -fail-on-found         Exit 1 when auth components are detected")
	fmt.Println("    -max-errors <n>        Exit 3 after n failed fetches")
	fmt.Println()
	fmt.Printf("  %s\n", ui.SubtitleStyle.Render("EXAMPLES:"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("authscope scan -u https://github.com/login"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("authscope scan -l targets.txt -renderer static -o report.json"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("cat urls.txt | authscope scan -stdin -json"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("authscope defaults -html-export report.html"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("authscope serve -listen :5000"))
	fmt.Println()
	ui.PrintHelp("Run \"authscope <command> -h\" for command-specific flags")
	fmt.Println()
}
