package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/handiism/quran-downloader/internal/catalog"
	"github.com/handiism/quran-downloader/internal/config"
	"github.com/handiism/quran-downloader/internal/download"
	"github.com/handiism/quran-downloader/internal/model"
)

func main() {
	var (
		reciterFlag     = flag.String("reciter", "", "Reciter id or name")
		surahFlag       = flag.String("surah", "", "Surah number or name to download")
		allFlag         = flag.Bool("all", false, "Download all 114 surahs of the reciter")
		listFlag        = flag.Bool("list", false, "List reciters and exit")
		outputFlag      = flag.String("output", "", "Download directory (overrides config)")
		configFlag      = flag.String("config", "", "Path to config file (default: user config dir)")
		concurrencyFlag = flag.Int("concurrency", 0, "Maximum concurrent downloads (overrides config)")
		attemptsFlag    = flag.Int("attempts", 0, "Attempts per file (overrides config)")
		playlistFlag    = flag.Bool("playlist", false, "Create a playlist in the reciter folder")
		yesFlag         = flag.Bool("yes", false, "Retry failed downloads without asking")
		roundsFlag      = flag.Int("rounds", 3, "Maximum retry rounds with -yes")
		verboseFlag     = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	if !*listFlag && (*reciterFlag == "" || (*surahFlag == "" && !*allFlag)) {
		fmt.Println("Quran Downloader - Download Quran recitations from mp3quran.net")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  quran-dl -list")
		fmt.Println("  quran-dl -reciter <id|name> -surah <number|name> [options]")
		fmt.Println("  quran-dl -reciter <id|name> -all [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: quran-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *concurrencyFlag > 0 {
		settings.MaxConcurrentDownloads = *concurrencyFlag
	}
	if *attemptsFlag > 0 {
		settings.DownloadMaxAttempts = *attemptsFlag
	}
	if *playlistFlag {
		settings.CreatePlaylist = true
	}

	session := config.NewSession(settings.DownloadsPath)
	if *outputFlag != "" {
		if _, err := session.SetDownloadRoot(*outputFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting output directory: %v\n", err)
			os.Exit(1)
		}
	}

	// Handle interrupts
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := newConsole(os.Stdout, *verboseFlag)
	manager := download.NewManager(settings, session, out.Event)

	fmt.Println(titleStyle.Render("Quran Downloader"))
	fmt.Println(dimStyle.Render(strings.Repeat("━", 40)))

	if err := manager.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching reciters: %v\n", err)
		os.Exit(1)
	}

	if *listFlag {
		for i, name := range manager.Catalog().SortedNames() {
			fmt.Printf("%4d. %s\n", i+1, name)
		}
		return
	}

	reciter, err := manager.Catalog().FindReciter(*reciterFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var items []model.WorkItem
	if *allFlag {
		items = download.AllChapters(reciter.ID)
	} else {
		chapter, ok := catalog.Chapters().Lookup(*surahFlag)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown surah %q\n", *surahFlag)
			os.Exit(1)
		}
		items = []model.WorkItem{{Chapter: chapter.Number, ReciterID: reciter.ID}}
	}

	fmt.Printf("Reciter: %s\nSaving to: %s\n\n", reciter.Name, session.DownloadRoot())

	stdin := bufio.NewReader(os.Stdin)
	for round := 0; ; round++ {
		out.StartBatch(len(items), "Downloading")
		result := manager.Download(ctx, items, out)
		out.EndBatch()

		if result.OK() || ctx.Err() != nil {
			printSummary(manager)
			if ctx.Err() != nil {
				fmt.Println("\nDownload cancelled.")
				os.Exit(130)
			}
			return
		}

		printFailed(result)

		if *yesFlag {
			if round >= *roundsFlag {
				break
			}
		} else if !confirm(stdin, os.Stdout, "Retry failed downloads? [y/N] ") {
			break
		}
		items = result.Failed
	}

	printSummary(manager)
	os.Exit(1)
}

func printFailed(result *download.BatchResult) {
	fmt.Println(warningStyle.Render(fmt.Sprintf("%d download(s) failed:", len(result.Failed))))
	for _, item := range result.Failed {
		name := item.String()
		if ch, ok := catalog.Chapters().ByNumber(item.Chapter); ok {
			name = fmt.Sprintf("%d. %s", ch.Number, ch.Name)
		}
		fmt.Println("  - " + name)
	}
}

func printSummary(manager *download.Manager) {
	received, _, filesReceived, filesTotal := manager.GetProgress()
	fmt.Println(dimStyle.Render(strings.Repeat("━", 40)))
	fmt.Printf("Downloaded %d/%d files (%.2f MB)\n", filesReceived, filesTotal, float64(received)/1024/1024)
}

// confirm asks a yes/no question. Anything but y/yes, including EOF, is no.
func confirm(in *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
