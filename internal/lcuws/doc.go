// Package lcuws реализует WebSocket-клиент событий League Client (LCU).
// Клиент подключается к wss://127.0.0.1:<app-port>/ с Basic-авторизацией
// riot:<token>, повторяя рукопожатие бесконечно (RetryDelay), пока клиент
// игры не начнёт принимать соединения.
//
// Внутри сессии работают две горутины:
//
//   - writer — забирает команды Subscribe/Unsubscribe из ограниченной очереди,
//     пишет фреймы [5,"OnJsonApiEvent_..."] / [6,"..."] и только после
//     успешной записи меняет Registry;
//   - dispatcher — читает фреймы [8,"OnJsonApiEvent_...",{...}], по имени
//     события находит топик (internal/topic) и по очереди вызывает колбэки.
//
// Колбэк получает собственную копию payload; паника в колбэке логируется и
// не мешает остальным. Битый фрейм пропускается.
//
// Обрыв соединения после подключения завершает сессию (Done/Err), если не
// включён AutoReconnect: тогда клиент переподключается и заново подписывается
// на все топики из Registry.
//
// События (колбэки поля структуры):
//   - OnConnecting, OnConnected, OnDisconnected, OnError.
//
// Пример:
//
//	c := lcuws.New(lcuws.Config{Port: 58929, Token: token, InsecureSkipVerify: true})
//	if err := c.Connect(ctx); err != nil { log.Fatal(err) }
//	defer c.Close()
//
//	_ = c.Subscribe(ctx, "/lol-gameflow/v1/gameflow-phase", func(data map[string]any) {
//	    fmt.Println(data["data"])
//	})
package lcuws
