package ws

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages chat stream subscriptions by team ID.
type Hub struct {
	rooms     map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
}

// message couples payload with team identifier.
type message struct {
	teamID  string
	payload []byte
}

// subscription defines register/unregister requests.
type subscription struct {
	teamID string
	client Subscriber
}

// NewHub creates an initialized Hub.
func NewHub() *Hub {
	h := &Hub{
		rooms:     make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.rooms[sub.teamID]; !ok {
				h.rooms[sub.teamID] = make(map[Subscriber]struct{})
			}
			h.rooms[sub.teamID][sub.client] = struct{}{}
		case sub := <-h.unreg:
			if clients, ok := h.rooms[sub.teamID]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.rooms, sub.teamID)
				}
			}
		case msg := <-h.broadcast:
			if clients, ok := h.rooms[msg.teamID]; ok {
				for c := range clients {
					if err := c.Send(msg.payload); err != nil {
						c.Close()
						delete(clients, c)
					}
				}
				if len(clients) == 0 {
					delete(h.rooms, msg.teamID)
				}
			}
		}
	}
}

// Register adds a client to a team's chat stream.
func (h *Hub) Register(teamID string, client Subscriber) {
	h.register <- subscription{teamID: teamID, client: client}
}

// Unregister removes a client.
func (h *Hub) Unregister(teamID string, client Subscriber) {
	h.unreg <- subscription{teamID: teamID, client: client}
}

// Broadcast sends payload to all clients in the team's room.
func (h *Hub) Broadcast(teamID string, payload []byte) {
	h.broadcast <- message{teamID: teamID, payload: payload}
}
