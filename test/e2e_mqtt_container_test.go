package test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mjoly/fieldops/core/events"
	"github.com/mjoly/fieldops/core/model"
	"github.com/mjoly/fieldops/infra/mqtt"
	"github.com/mjoly/fieldops/internal/eventbus"
)

func waitForMQTTReady(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
`
	dir := t.TempDir()
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	if err := waitForMQTTReady(broker, 5*time.Second); err != nil {
		t.Logf("mosquitto not ready at %s: %v", broker, err)
		t.Skip("Mosquitto not ready after retries")
	}
	return cont, broker
}

func TestChangeEventsOverMQTTContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	bus := eventbus.New()
	defer bus.Close()
	ch := bus.Subscribe()

	sub, err := mqtt.NewSubscriber(mqtt.Config{Broker: broker, ClientID: "e2e-sub"}, bus)
	if err != nil {
		t.Fatalf("subscriber: %v", err)
	}
	defer sub.Disconnect()

	pubOpts := paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-pub")
	pub := paho.NewClient(pubOpts)
	if token := pub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("publisher connect: %v", token.Error())
	}
	defer pub.Disconnect(100)

	payload, _ := json.Marshal(map[string]any{
		"entity":     "job",
		"event_type": "update",
		"job":        model.Job{ID: "j1", Status: model.StatusEnRoute},
	})
	// The subscription is established asynchronously on connect.
	time.Sleep(250 * time.Millisecond)
	if token := pub.Publish("fieldops/changes/job", 0, false, payload); token.Wait() && token.Error() != nil {
		t.Fatalf("publish: %v", token.Error())
	}

	select {
	case ev := <-ch:
		je, ok := ev.(events.JobEvent)
		if !ok {
			t.Fatalf("expected JobEvent got %T", ev)
		}
		if je.Job.ID != "j1" || je.Job.Status != model.StatusEnRoute {
			t.Fatalf("unexpected event %#v", je)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("change event never reached the bus")
	}
}
