// tdsim 无界面塔防模拟器
//
// 读取防御塔/敌人属性表和一个或多个关卡，按建造计划运行模拟并输出结果。
// 多个关卡可以并行运行（每个关卡一个独立的模拟实例）。
//
// 用法：
//
//	tdsim -levels data/levels/meadow.yaml -plan data/plans/meadow_basic.yaml
//	tdsim -levels data/levels/meadow.yaml,data/levels/canyon.yaml -parallel 2 -save
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/quasilyte/gdata/v2"
	"golang.org/x/sync/errgroup"

	"github.com/decker502/tdsim/pkg/config"
	"github.com/decker502/tdsim/pkg/game"
	"github.com/decker502/tdsim/pkg/sim"
)

var (
	verbose     = flag.Bool("verbose", false, "显示详细调试信息")
	towersPath  = flag.String("towers", "data/towers.yaml", "防御塔属性表")
	enemiesPath = flag.String("enemies", "data/enemies.yaml", "敌人属性表")
	levelsFlag  = flag.String("levels", "data/levels/meadow.yaml", "关卡文件，多个用逗号分隔")
	planPath    = flag.String("plan", "", "建造计划文件（可选，level 字段与关卡ID不符时跳过该关卡的计划）")
	parallel    = flag.Int("parallel", 1, "同时运行的关卡数")
	step        = flag.Float64("step", 0, "固定步长（秒），0 表示使用关卡配置")
	save        = flag.Bool("save", false, "保存运行记录并显示每个关卡的最佳成绩")
	perTick     = flag.Bool("trace", false, "输出每帧的系统日志（需要 -verbose）")
)

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tdsim: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	towers, err := config.LoadTowerTable(*towersPath)
	if err != nil {
		return err
	}
	enemies, err := config.LoadEnemyTable(*enemiesPath)
	if err != nil {
		return err
	}

	var plan *config.BuildPlan
	planName := ""
	if *planPath != "" {
		plan, err = config.LoadBuildPlan(*planPath)
		if err != nil {
			return err
		}
		if err := plan.ValidateAgainst(towers); err != nil {
			return fmt.Errorf("plan %s: %w", *planPath, err)
		}
		planName = strings.TrimSuffix(filepath.Base(*planPath), filepath.Ext(*planPath))
	}

	var levels []*config.LevelConfig
	for _, path := range splitList(*levelsFlag) {
		level, err := config.LoadLevelConfig(path)
		if err != nil {
			return err
		}
		if err := level.ValidateAgainst(enemies); err != nil {
			return err
		}
		levels = append(levels, level)
	}
	if len(levels) == 0 {
		return fmt.Errorf("no levels given")
	}

	results := make([]sim.RunResult, len(levels))

	g, gctx := errgroup.WithContext(ctx)
	if *parallel > 0 {
		g.SetLimit(*parallel)
	}
	for i, level := range levels {
		i, level := i, level
		g.Go(func() error {
			s, err := sim.New(level, towers, enemies, sim.Options{Verbose: *verbose && *perTick})
			if err != nil {
				return err
			}

			levelPlan, levelPlanName := plan, planName
			if plan != nil && plan.Level != "" && plan.Level != level.ID {
				log.Printf("[tdsim] Plan %s targets level %s, running %s without a plan", planName, plan.Level, level.ID)
				levelPlan, levelPlanName = nil, ""
			}

			result, err := sim.NewPlanRunner(levelPlan, levelPlanName, *step).Run(gctx, s)
			if err != nil {
				return fmt.Errorf("level %s: %w", level.ID, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		printResult(os.Stdout, r)
	}

	if *save {
		return saveResults(results)
	}
	return nil
}

func saveResults(results []sim.RunResult) error {
	manager, err := gdata.Open(gdata.Config{AppName: "tdsim"})
	if err != nil {
		// 无法持久化时退回内存记录
		log.Printf("[tdsim] Warning: gdata unavailable: %v", err)
		manager = nil
	}
	store, err := game.NewProgressStore(manager)
	if err != nil {
		return err
	}

	for _, r := range results {
		if _, _, err := store.Record(r.LevelResult()); err != nil {
			return fmt.Errorf("failed to record run %s: %w", r.RunID, err)
		}
		if best, ok := store.Best(r.LevelID); ok {
			fmt.Printf("best %-16s run=%s victory=%v lives=%d/%d time=%.1fs\n",
				best.LevelID, best.RunID, best.Victory, best.Lives, best.MaxLives, best.SimTime)
		}
	}
	return nil
}

func printResult(w io.Writer, r sim.RunResult) {
	outcome := "timeout"
	switch {
	case r.Victory:
		outcome = "victory"
	case r.GameOver:
		outcome = "defeat"
	}
	fmt.Fprintf(w, "%-16s %-8s waves=%d/%d lives=%d/%d gold=%d killed=%d leaked=%d towers=%d time=%.1fs run=%s\n",
		r.LevelID, outcome, r.WavesCompleted, r.TotalWaves, r.Lives, r.MaxLives, r.Gold,
		r.EnemiesKilled, r.EnemiesLeaked, r.TowersBuilt, r.SimTime, r.RunID)
	for _, rej := range r.Rejected {
		fmt.Fprintf(w, "  rejected %s %q at t=%.2fs: %s\n", rej.Action, rej.Label, rej.At, rej.Reason)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
