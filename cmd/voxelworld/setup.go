package main

import (
	"fmt"
	"os"

	"voxelworld/internal/camera"
	"voxelworld/internal/config"
	"voxelworld/internal/logger"
	"voxelworld/internal/metrics"
	"voxelworld/internal/overlay"
	"voxelworld/internal/registry"
	"voxelworld/internal/terrain"
	"voxelworld/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// session is one world and the camera flying through it.
type session struct {
	world  *world.World
	camera *camera.Camera
}

// setup creates the multiverse and one session per configured world. The
// first world gets the persisted overlay.
func setup(cfg *config.Config, m *metrics.Metrics) (*world.Multiverse, []session, *overlay.Overlay, error) {
	mv := world.NewMultiverse(world.MultiverseConfig{
		Workers:       cfg.Workers.Count,
		QueueSize:     cfg.Workers.QueueSize,
		CacheCapacity: cfg.Workers.CacheCapacity,
		Metrics:       m,
		Logger:        logger.Named("multiverse"),
	})

	edits := overlay.New()
	if cfg.Overlay.Path != "" {
		if err := edits.LoadFile(cfg.Overlay.Path); err != nil {
			mv.Close()
			return nil, nil, nil, fmt.Errorf("load overlay: %w", err)
		}
		logger.Info("overlay loaded", zap.String("path", cfg.Overlay.Path), zap.Int("voxels", edits.Len()))
	}

	var defOpts []terrain.Option
	if cfg.World.Assets != "" {
		reg, err := registry.FromAssets(os.DirFS(cfg.World.Assets))
		if err != nil {
			mv.Close()
			return nil, nil, nil, fmt.Errorf("load assets: %w", err)
		}
		defOpts = append(defOpts, terrain.WithTextureMapper(reg.Mapper()))
		logger.Info("asset pack loaded", zap.String("path", cfg.World.Assets), zap.Int("textures", len(reg.Textures())))
	}

	sessions := make([]session, 0, cfg.World.Count)
	for i := range cfg.World.Count {
		var opts []world.Option
		if i == 0 {
			opts = append(opts, world.WithOverlay(edits))
		}
		w, err := mv.NewWorld(cfg.Definition(i, defOpts...), opts...)
		if err != nil {
			mv.Close()
			return nil, nil, nil, err
		}
		cam := newCamera(cfg.Camera)
		w.SetViewer(cam)
		sessions = append(sessions, session{world: w, camera: cam})
		logger.Info("world created",
			zap.Stringer("world", w.ID()),
			zap.Int("spawning_distance", w.Settings().SpawningDistance),
			zap.Stringer("mesher", w.Settings().Mesher),
		)
	}
	return mv, sessions, edits, nil
}

func newCamera(c config.CameraConfig) *camera.Camera {
	cam := camera.New(c.Width, c.Height)
	cam.SetPerspective(c.FOV, c.Near, c.Far)
	cam.SetPosition(mgl32.Vec3(c.Start))
	cam.SetRotation(c.Yaw, c.Pitch)
	return cam
}
