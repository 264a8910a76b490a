package redisx

import "time"

const (
	// Sesión activa: session:{token_id} -> actor JSON. Borrada en logout.
	// El TTL de la sesión sigue al TTL del token que la creó.
	KeySession = "session:%s"

	// Cache de lectura de pedidos: pedido:{order_id} -> pedido JSON.
	KeyOrder = "pedido:%s"
)

var TTLOrderCache = 5 * time.Minute
