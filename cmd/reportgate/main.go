package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"reportgate/internal/judge"
	"reportgate/internal/reeval"
	"reportgate/internal/report"
	"reportgate/internal/workflow"
)

func main() {
	reportPath := flag.String("report", "", "path to the generator report JSON")
	kind := flag.String("kind", "assessment", "report kind")
	configPath := flag.String("config", "", "optional YAML config file")
	model := flag.String("model", "gemini-2.5-flash", "Gemini model id")
	useFake := flag.Bool("fake", false, "use the deterministic fake judge (offline)")
	outPath := flag.String("out", "", "write the workflow result JSON here (default stdout)")
	flag.Parse()
	if *reportPath == "" {
		log.Fatal("--report is required")
	}

	_ = godotenv.Load()

	raw, err := os.ReadFile(*reportPath)
	if err != nil {
		log.Fatal(err)
	}
	doc, err := report.ParseDocument(raw)
	if err != nil {
		log.Fatalf("parse report: %v", err)
	}

	cfg, err := workflow.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	var j judge.Client
	if *useFake {
		j = judge.NewFake()
	} else {
		if os.Getenv("GEMINI_API_KEY") == "" {
			log.Fatal("GEMINI_API_KEY is not set (or pass --fake)")
		}
		gj, err := judge.NewGeminiJudge(ctx, *model)
		if err != nil {
			log.Fatal(err)
		}
		j = gj
	}
	j = judge.Wrap(j,
		judge.Logging("judge"),
		judge.RateLimit(envFloat("JUDGE_RPS"), envInt("JUDGE_BURST")),
	)
	defer j.Close()

	orch := workflow.New(j, nil, cfg)
	res, err := orch.Run(ctx, doc, *kind)
	if err != nil {
		log.Fatal(err)
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	if *outPath != "" {
		if err := os.WriteFile(*outPath, out, 0o644); err != nil {
			log.Fatal(err)
		}
	} else {
		os.Stdout.Write(append(out, '\n'))
	}

	switch res.Status {
	case reeval.StatusApproved:
		os.Exit(0)
	case reeval.StatusRequiresRevision:
		os.Exit(1)
	default:
		os.Exit(2)
	}
}

func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, _ := strconv.Atoi(v)
	return n
}
