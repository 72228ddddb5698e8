package sqlstore

// schema is portable between SQLite and Postgres. Identifiers, timestamps and
// amounts are TEXT: uuids in canonical form, timestamps in a fixed-width UTC
// layout that sorts lexically, decimals as exact strings.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
    id              TEXT        PRIMARY KEY,
    name            TEXT        NOT NULL DEFAULT '',
    email           TEXT        NOT NULL DEFAULT '',
    phone           TEXT        NOT NULL DEFAULT '',
    active          BOOLEAN     NOT NULL DEFAULT TRUE,
    created_at      TEXT        NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id              TEXT        PRIMARY KEY,
    customer_id     TEXT        NOT NULL REFERENCES customers(id),
    description     TEXT        NOT NULL DEFAULT '',
    amount          TEXT        NOT NULL DEFAULT '0',
    created_at      TEXT        NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id                  TEXT        PRIMARY KEY,
    -- NULL for products that are not assigned to an order.
    order_id            TEXT        REFERENCES orders(id),
    -- Index of the product inside its order, keeps the submitted order on read.
    line_no             INTEGER     NOT NULL DEFAULT 0,
    name                TEXT        NOT NULL DEFAULT '',
    description         TEXT        NOT NULL DEFAULT '',
    price               TEXT        NOT NULL DEFAULT '0',
    stock_quantity      INTEGER     NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
    percentage_discount INTEGER     NOT NULL DEFAULT 0 CHECK (percentage_discount BETWEEN 0 AND 100),
    created_at          TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customers_created ON customers(created_at, id);
CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at, id);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_products_created ON products(created_at, id);
CREATE INDEX IF NOT EXISTS idx_products_order ON products(order_id, line_no);
`
