package orchestrator

import "fmt"

// Enqueue はIssueをキュー末尾へ追加して永続化する。
// すでにキューに存在する場合は何もしない。
func (o *Orchestrator) Enqueue(id string) {
	o.mu.Lock()
	if id == "" || o.state.inQueue(id) {
		o.mu.Unlock()
		return
	}
	o.state.Queue = append(o.state.Queue, id)
	o.mu.Unlock()

	o.activity.Append(LogInfo, fmt.Sprintf("Issue #%s added to queue", id), id)
	o.persist()
}

// EnqueueFront はIssueをキュー先頭へ追加して永続化する。
// すでにキューに存在する場合は先頭へ移動する。
func (o *Orchestrator) EnqueueFront(id string) {
	o.mu.Lock()
	if id == "" {
		o.mu.Unlock()
		return
	}
	o.state.removeFromQueue(id)
	o.state.Queue = append([]string{id}, o.state.Queue...)
	o.mu.Unlock()

	o.activity.Append(LogInfo, fmt.Sprintf("Issue #%s added to the front of the queue", id), id)
	o.persist()
}

// Dequeue はキュー内のどの位置にあってもIssueを取り除き、永続化する。
// 存在しない場合は何もしない。
func (o *Orchestrator) Dequeue(id string) {
	o.mu.Lock()
	removed := o.state.removeFromQueue(id)
	if removed && o.state.CurrentIssueID == id {
		o.state.clearCurrentItem()
	}
	o.mu.Unlock()

	if !removed {
		return
	}
	o.activity.Append(LogInfo, fmt.Sprintf("Issue #%s removed from queue", id), id)
	o.persist()
}

// Reorder はキュー内の要素を移動する。永続化は行わない。
func (o *Orchestrator) Reorder(fromIndex, toIndex int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := len(o.state.Queue)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return fmt.Errorf("reorder index out of range: from=%d to=%d size=%d", fromIndex, toIndex, n)
	}
	if fromIndex == toIndex {
		return nil
	}

	id := o.state.Queue[fromIndex]
	o.state.Queue = append(o.state.Queue[:fromIndex], o.state.Queue[fromIndex+1:]...)

	rest := make([]string, 0, n)
	rest = append(rest, o.state.Queue[:toIndex]...)
	rest = append(rest, id)
	rest = append(rest, o.state.Queue[toIndex:]...)
	o.state.Queue = rest
	return nil
}

// ClearQueue はキューを空にして永続化する
func (o *Orchestrator) ClearQueue() {
	o.mu.Lock()
	o.state.Queue = []string{}
	o.state.clearCurrentItem()
	o.mu.Unlock()

	o.activity.Append(LogInfo, "Queue cleared", "")
	o.persist()
}

// Skip はキュー先頭のIssueを取り除いて永続化する
func (o *Orchestrator) Skip() {
	o.mu.Lock()
	if len(o.state.Queue) == 0 {
		o.mu.Unlock()
		return
	}
	id := o.state.Queue[0]
	o.state.Queue = o.state.Queue[1:]
	if o.state.CurrentIssueID == id {
		o.state.clearCurrentItem()
	}
	o.mu.Unlock()

	o.activity.Append(LogInfo, fmt.Sprintf("Issue #%s skipped", id), id)
	o.persist()
}
