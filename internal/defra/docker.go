package defra

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

const (
	// DefaultContainerName is the managed DefraDB container.
	DefaultContainerName = "maquette-defra"
	// DefaultImage is the DefraDB image to run.
	DefaultImage = "sourcenetwork/defradb:latest"
	// DefaultPort is the host port DefraDB listens on.
	DefaultPort = "9181"

	containerLabel = "maquette-defra"
)

// DockerManager manages the lifecycle of the local DefraDB container.
type DockerManager struct {
	cli           *client.Client
	containerName string
	image         string
	hostPort      string
	dataDir       string
	logger        *slog.Logger
}

// DockerConfig configures a DockerManager. Zero values fall back to the
// defaults above.
type DockerConfig struct {
	ContainerName string
	Image         string
	HostPort      string
	DataDir       string
	Logger        *slog.Logger
}

// NewDockerManager creates a manager bound to the local Docker daemon.
func NewDockerManager(cfg DockerConfig) (*DockerManager, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	m := &DockerManager{
		cli:           cli,
		containerName: cfg.ContainerName,
		image:         cfg.Image,
		hostPort:      cfg.HostPort,
		dataDir:       cfg.DataDir,
		logger:        cfg.Logger,
	}
	if m.containerName == "" {
		m.containerName = DefaultContainerName
	}
	if m.image == "" {
		m.image = DefaultImage
	}
	if m.hostPort == "" {
		m.hostPort = DefaultPort
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m, nil
}

// Close releases the underlying Docker client.
func (m *DockerManager) Close() error {
	return m.cli.Close()
}

// URL returns the base URL of the managed DefraDB instance.
func (m *DockerManager) URL() string {
	return "http://localhost:" + m.hostPort
}

// Start ensures the DefraDB container exists and is running, then waits for
// it to answer health checks.
func (m *DockerManager) Start(ctx context.Context) error {
	id, status, err := m.findContainer(ctx)
	if err != nil {
		return err
	}

	switch status {
	case "running":
		m.logger.Info("defradb container already running", "container", m.containerName)
	case "":
		if err := m.createAndStart(ctx); err != nil {
			return err
		}
	default:
		m.logger.Info("starting existing defradb container", "container", m.containerName, "status", status)
		if err := m.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
			return fmt.Errorf("failed to start container: %w", err)
		}
	}

	return m.waitForReady(ctx)
}

// Stop stops the container if it is running.
func (m *DockerManager) Stop(ctx context.Context) error {
	id, status, err := m.findContainer(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("container %s not found", m.containerName)
	}
	if status != "running" {
		m.logger.Info("defradb container already stopped", "container", m.containerName)
		return nil
	}

	timeout := 10
	if err := m.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	m.logger.Info("defradb container stopped", "container", m.containerName)
	return nil
}

// Remove stops and removes the container. Data in the bind mount survives.
func (m *DockerManager) Remove(ctx context.Context) error {
	id, _, err := m.findContainer(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	if err := m.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	m.logger.Info("defradb container removed", "container", m.containerName)
	return nil
}

// Status returns the container status: running, exited, created, or
// "not found".
func (m *DockerManager) Status(ctx context.Context) (string, error) {
	id, status, err := m.findContainer(ctx)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "not found", nil
	}
	return status, nil
}

// Logs streams the container logs to the writer.
func (m *DockerManager) Logs(ctx context.Context, w io.Writer, tail string) error {
	id, _, err := m.findContainer(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("container %s not found", m.containerName)
	}

	reader, err := m.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch logs: %w", err)
	}
	defer reader.Close()

	_, err = io.Copy(w, reader)
	return err
}

func (m *DockerManager) findContainer(ctx context.Context) (id, status string, err error) {
	containers, err := m.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", m.containerName)),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to list containers: %w", err)
	}
	for _, c := range containers {
		for _, name := range c.Names {
			if name == "/"+m.containerName {
				return c.ID, c.State, nil
			}
		}
	}
	return "", "", nil
}

func (m *DockerManager) createAndStart(ctx context.Context) error {
	if err := m.ensureImage(ctx); err != nil {
		return err
	}

	port := nat.Port("9181/tcp")
	containerCfg := &container.Config{
		Image: m.image,
		Cmd: []string{
			"start",
			"--store", "badger",
			"--rootdir", "/data",
			"--url", "0.0.0.0:9181",
		},
		ExposedPorts: nat.PortSet{port: struct{}{}},
		Labels:       map[string]string{"app": containerLabel},
	}
	hostCfg := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: m.hostPort}},
		},
		RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
	}
	if m.dataDir != "" {
		hostCfg.Binds = []string{m.dataDir + ":/data"}
	}

	m.logger.Info("creating defradb container", "container", m.containerName, "image", m.image, "port", m.hostPort)
	created, err := m.cli.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, m.containerName)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	if err := m.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	return nil
}

func (m *DockerManager) ensureImage(ctx context.Context) error {
	images, err := m.cli.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", m.image)),
	})
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	if len(images) > 0 {
		return nil
	}

	m.logger.Info("pulling defradb image", "image", m.image)
	reader, err := m.cli.ImagePull(ctx, m.image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()
	_, err = io.Copy(io.Discard, reader)
	return err
}

// waitForReady polls the health-check endpoint until DefraDB answers.
func (m *DockerManager) waitForReady(ctx context.Context) error {
	c := NewClient(m.URL())
	err := retry.Do(
		func() error { return c.HealthCheck(ctx) },
		retry.Context(ctx),
		retry.Attempts(30),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("defradb did not become ready: %w", err)
	}
	m.logger.Info("defradb ready", "url", m.URL())
	return nil
}
