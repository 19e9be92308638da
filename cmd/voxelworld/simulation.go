package main

import (
	"context"
	"errors"
	"time"

	"voxelworld/internal/config"
	"voxelworld/internal/logger"
	"voxelworld/internal/profiling"
	"voxelworld/internal/voxel"
	"voxelworld/internal/world"

	"go.uber.org/zap"
)

const slowTick = 50 * time.Millisecond

// Simulation owns the tick loop state.
type Simulation struct {
	cfg      *config.Config
	mv       *world.Multiverse
	sessions []session
	limiter  *TickLimiter
	log      *zap.Logger

	// Timing
	ticks      int
	lastTime   time.Time
	lastReport time.Time
	lastDig    time.Time
}

func newSimulation(cfg *config.Config, mv *world.Multiverse, sessions []session) *Simulation {
	now := time.Now()
	return &Simulation{
		cfg:        cfg,
		mv:         mv,
		sessions:   sessions,
		limiter:    NewTickLimiter(cfg.World.TickRate),
		log:        logger.Named("simulation"),
		lastTime:   now,
		lastReport: now,
		lastDig:    now,
	}
}

// Run ticks until ctx is done or the configured number of ticks ran.
func (s *Simulation) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.cfg.World.Ticks > 0 && s.ticks >= s.cfg.World.Ticks {
			s.log.Info("tick budget reached", zap.Int("ticks", s.ticks))
			return nil
		}
		if err := s.tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		s.limiter.Wait()
	}
}

func (s *Simulation) tick(ctx context.Context) error {
	now := time.Now()
	dt := float32(now.Sub(s.lastTime).Seconds())
	s.lastTime = now

	for _, sess := range s.sessions {
		cam := sess.camera
		cam.SetPosition(cam.Position().Add(cam.Front().Mul(s.cfg.Camera.Speed * dt)))
	}

	if err := s.mv.Tick(ctx); err != nil {
		return err
	}
	s.ticks++

	if every := s.cfg.Camera.DigInterval; every > 0 && now.Sub(s.lastDig) >= every {
		s.dig()
		s.lastDig = now
	}

	if d := time.Since(now); d > slowTick {
		s.log.Debug("slow tick", zap.Duration("took", d), zap.String("top", profiling.TopN(3)))
	}
	if time.Since(s.lastReport) >= time.Second {
		s.report()
		s.lastReport = time.Now()
	}
	return nil
}

// dig clears the voxel at the centre of each camera's view.
func (s *Simulation) dig() {
	for _, sess := range s.sessions {
		w, h := sess.camera.ViewportSize()
		ray, ok := sess.camera.ViewportToWorld(float32(w)/2, float32(h)/2)
		if !ok {
			continue
		}
		hit, ok := sess.world.Raycast(ray, nil)
		if !ok {
			continue
		}
		sess.world.SetVoxel(hit.VoxelPos(), voxel.Air)
		s.log.Debug("dug voxel",
			zap.Stringer("world", sess.world.ID()),
			zap.Stringer("pos", hit.VoxelPos()),
			zap.Stringer("was", hit.Voxel),
		)
	}
}

func (s *Simulation) report() {
	for _, sess := range s.sessions {
		s.log.Info("status",
			zap.Stringer("world", sess.world.ID()),
			zap.Int("tick", s.ticks),
			zap.Int("chunks", sess.world.ChunkCount()),
			zap.Int("cached_meshes", sess.world.MeshCache().Len()),
			zap.Stringer("camera", voxel.Floor(sess.camera.Position())),
		)
	}
}
