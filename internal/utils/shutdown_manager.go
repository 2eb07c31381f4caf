package utils

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// teardownBudget ограничивает время на закрытие HTTP-сервера, Mongo и Redis.
const teardownBudget = 10 * time.Second

// ShutdownManager останавливает сервис по SIGINT/SIGTERM: отменяет базовый
// контекст, прогоняет зарегистрированные задачи и закрывает Done.
// Выходит из процесса main, а не сам менеджер.
type ShutdownManager struct {
	cancelFunc    context.CancelFunc
	shutdownTasks []func(context.Context) error
	done          chan struct{}
	mu            sync.Mutex
}

func NewShutdownManager(ctx context.Context) (context.Context, *ShutdownManager) {
	ctx, cancel := context.WithCancel(ctx)
	manager := &ShutdownManager{
		cancelFunc: cancel,
		done:       make(chan struct{}),
	}
	return ctx, manager
}

func (sm *ShutdownManager) Register(task func(context.Context) error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.shutdownTasks = append(sm.shutdownTasks, task)
}

// Done закрывается после завершения всех задач остановки.
func (sm *ShutdownManager) Done() <-chan struct{} {
	return sm.done
}

func (sm *ShutdownManager) StartListening() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("[SHUTDOWN] Received signal: %v", sig)
		sm.cancelFunc()

		ctx, cancel := context.WithTimeout(context.Background(), teardownBudget)
		defer cancel()

		sm.mu.Lock()
		defer sm.mu.Unlock()
		for _, task := range sm.shutdownTasks {
			if err := task(ctx); err != nil {
				log.Printf("[SHUTDOWN] Teardown task failed: %v", err)
			}
		}

		log.Println("[SHUTDOWN] Grievance service stopped")
		close(sm.done)
	}()
}
