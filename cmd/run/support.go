package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/zintix-labs/smoothlab"
	"github.com/zintix-labs/smoothlab/demo/demo_configs"
	"github.com/zintix-labs/smoothlab/primes"
	"github.com/zintix-labs/smoothlab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	name      string
	id        spec.BID
	worker    int
	terms     int
	rounds    int
	pprofmode string
}

type bidFlag struct{ p *spec.BID }

func (f bidFlag) String() string { return fmt.Sprint(uint(*f.p)) }
func (f bidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = spec.BID(uint(u))
	return nil
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.Var(bidFlag{&cfg.id}, "basis", "target basis id")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.terms, "terms", 100000, "terms per round")
	flag.IntVar(&cfg.rounds, "rounds", 10, "rounds per worker")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()
}

// 這裡解析並分支要執行的 benchmark
func executeBench() {
	cfg.valid() // 基本檢查

	lab, err := smoothlab.NewAuto(
		primes.NewSieve(),
		smoothlab.Configs(demo_configs.FS),
	)
	if err != nil {
		log.Fatal(err)
	}
	b, err := lab.NewBench(cfg.id)
	if err != nil {
		log.Fatal(err)
	}
	ent, _ := lab.EntryById(cfg.id)
	cfg.name = ent.Name
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	if cfg.worker == 1 { // 單線程
		p.Printf("%s[BASIS:%s] [TERMS:%d] [ROUNDS:%d]%s\n", green, cfg.name, cfg.terms, cfg.rounds, reset)
		st, used, err := b.Run(cfg.terms, cfg.rounds, true)
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
	} else {
		p.Printf("%s[WORKERS:%d] [BASIS:%s] [TERMS:%d] [ROUNDS:%d]%s\n", green, cfg.worker, cfg.name, cfg.terms, cfg.worker*cfg.rounds, reset)
		st, used, err := b.RunMP(cfg.terms, cfg.rounds, cfg.worker, true) // 併發
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
	}
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}

	// 項數檢查
	if cfg.terms < 1 {
		log.Fatal("value err : terms must > 0")
	}
	if cfg.terms > spec.DefaultMaxTerms {
		p.Printf("too much terms: %d resized to %d\n", cfg.terms, spec.DefaultMaxTerms)
		cfg.terms = spec.DefaultMaxTerms
	}

	// 輪數檢查
	if cfg.rounds < 1 {
		log.Fatal("value err : rounds must > 0")
	}
}
